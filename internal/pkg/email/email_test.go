package email

import (
	"context"
	"encoding/base64"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	addr string
	from string
	to   []string
	msg  string
}

func testConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host:          "smtp.example.com",
		Port:          587,
		From:          "payroll@example.com",
		FromName:      "Payroll",
		RatePerMinute: 6000,
	}
}

func TestSendPayrollReport_BuildsMultipartMessage(t *testing.T) {
	// Arrange
	var sent []sentMessage
	svc, err := newEmailService(testConfig(), func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMessage{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	})
	require.NoError(t, err)

	content := []byte("xlsx-bytes")

	// Act
	err = svc.SendPayrollReport(context.Background(), []string{"hr@example.com", "ops@example.com"},
		PayrollReportData{OfficeName: "Jakarta", CycleStart: "01 Mar 2025", CycleEnd: "31 Mar 2025", EmployeeCount: 3},
		Attachment{FileName: "payroll.xlsx", ContentType: "application/octet-stream", Content: content},
	)

	// Assert
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "smtp.example.com:587", sent[0].addr)
	assert.Equal(t, []string{"hr@example.com", "ops@example.com"}, sent[0].to)
	assert.Contains(t, sent[0].msg, "Subject: Payroll 01 Mar 2025 - 31 Mar 2025 (Jakarta)")
	assert.Contains(t, sent[0].msg, "multipart/mixed")
	assert.Contains(t, sent[0].msg, `filename="payroll.xlsx"`)
	assert.Contains(t, sent[0].msg, base64.StdEncoding.EncodeToString(content))
	assert.Contains(t, sent[0].msg, "Payroll report: Jakarta")
}

func TestSendPayrollReport_RetriesThenFails(t *testing.T) {
	attempts := 0
	svc, err := newEmailService(testConfig(), func(string, smtp.Auth, string, []string, []byte) error {
		attempts++
		return errors.New("connection refused")
	})
	require.NoError(t, err)
	svc.backoff = time.Millisecond

	err = svc.SendPayrollReport(context.Background(), []string{"hr@example.com"}, PayrollReportData{}, Attachment{})

	require.Error(t, err)
	assert.Equal(t, maxRetries, attempts)
	assert.True(t, strings.Contains(err.Error(), "connection refused"))
}

func TestSendPayrollReport_SkipsWithoutHost(t *testing.T) {
	called := false
	cfg := testConfig()
	cfg.Host = ""
	svc, err := newEmailService(cfg, func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	})
	require.NoError(t, err)

	err = svc.SendPayrollReport(context.Background(), []string{"hr@example.com"}, PayrollReportData{}, Attachment{})

	assert.NoError(t, err)
	assert.False(t, called)
}
