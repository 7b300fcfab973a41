package service

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"readyset/internal/models"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
}

func (f *fakeSES) SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sesv2.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func TestSendKitChecklist(t *testing.T) {
	ses := &fakeSES{}
	svc := newEmailService(ses, "noreply@readyset.example", "ReadySet", "https://readyset.example/", false)

	kit := models.Kit{
		ID: "k1", HouseType: "apartment", Region: "Coast", NumResidents: 2,
		RecommendedItems: []models.Item{
			{Name: "Water", Quantity: intPtr(6), Unit: "gal"},
			{Name: "<script>", Description: "a & b"},
		},
	}
	if err := svc.SendKitChecklist(context.Background(), "ana@example.com", "Ana", kit); err != nil {
		t.Fatalf("SendKitChecklist: %v", err)
	}
	if len(ses.inputs) != 1 {
		t.Fatalf("sent %d emails", len(ses.inputs))
	}

	in := ses.inputs[0]
	if got := *in.FromEmailAddress; got != "ReadySet <noreply@readyset.example>" {
		t.Errorf("from = %q", got)
	}
	if in.Destination.ToAddresses[0] != "ana@example.com" {
		t.Errorf("to = %v", in.Destination.ToAddresses)
	}
	htmlBody := *in.Content.Simple.Body.Html.Data
	textBody := *in.Content.Simple.Body.Text.Data
	if strings.Contains(htmlBody, "<script>") || !strings.Contains(htmlBody, "&lt;script&gt;") {
		t.Error("item names are not escaped in the HTML body")
	}
	if !strings.Contains(textBody, "[ ] Water (6 gal)") {
		t.Errorf("text body missing checklist line:\n%s", textBody)
	}
	if !strings.Contains(textBody, "https://readyset.example/kits/k1") {
		t.Errorf("text body missing kit link:\n%s", textBody)
	}
}

func TestDisabledEmailIsNoop(t *testing.T) {
	svc, err := NewEmailService(context.Background(), "us-east-1", "", "", "", false)
	if err != nil {
		t.Fatalf("NewEmailService: %v", err)
	}
	if svc.IsEnabled() {
		t.Error("service without a sender should be disabled")
	}
	if err := svc.SendKitChecklist(context.Background(), "a@example.com", "A", models.Kit{}); err != nil {
		t.Errorf("disabled send returned %v", err)
	}
}
