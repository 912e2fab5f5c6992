package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeGateway struct {
	sent []string
	fail bool
}

func (g *fakeGateway) Send(_ context.Context, phone, _ string) error {
	if g.fail {
		return errors.New("provider unreachable")
	}
	g.sent = append(g.sent, phone)
	return nil
}

type verificationFixture struct {
	svc     *VerificationService
	store   *memStore
	gateway *fakeGateway
	clock   *fakeClock
	tokens  *TokenIssuer
}

func newVerificationFixture() *verificationFixture {
	store := newMemStore()
	clock := &fakeClock{t: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	gateway := &fakeGateway{}
	tokens := NewTokenIssuer("test-secret", 24*time.Hour)
	tokens.now = clock.Now

	limiter := NewLimiter(store)
	limiter.now = clock.Now

	svc := NewVerificationService(store, store, limiter, gateway, tokens,
		5*time.Minute, time.Minute, 5*time.Second)
	svc.now = clock.Now

	return &verificationFixture{svc: svc, store: store, gateway: gateway, clock: clock, tokens: tokens}
}

func (f *verificationFixture) storedCode(t *testing.T, phone string) string {
	t.Helper()
	record, err := f.store.Get(context.Background(), phone)
	if err != nil {
		t.Fatalf("no verification record for %s: %v", phone, err)
	}
	return record.Code
}

func mustErrCode(t *testing.T, err error, code string) *Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %s, got nil", code)
	}
	apiErr, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *checkout.Error, got %v", err)
	}
	if apiErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, apiErr.Code, apiErr.Message)
	}
	return apiErr
}

func TestSendCodeHappyPath(t *testing.T) {
	f := newVerificationFixture()
	ctx := context.Background()

	result, err := f.svc.SendCode(ctx, "10.0.0.1", "0712345678", "Maria Pop")
	if err != nil {
		t.Fatalf("SendCode failed: %v", err)
	}
	if result.PhoneMasked != "+4071***5678" {
		t.Fatalf("unexpected masked phone: %s", result.PhoneMasked)
	}
	if result.ExpiresInSeconds != 300 {
		t.Fatalf("expected 300s expiry, got %d", result.ExpiresInSeconds)
	}
	if len(f.gateway.sent) != 1 || f.gateway.sent[0] != "+40712345678" {
		t.Fatalf("gateway not called with normalized phone: %v", f.gateway.sent)
	}
	if code := f.storedCode(t, "+40712345678"); len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
}

func TestSendCodeValidation(t *testing.T) {
	f := newVerificationFixture()
	ctx := context.Background()

	_, err := f.svc.SendCode(ctx, "10.0.0.1", "0212345678", "Maria Pop")
	mustErrCode(t, err, CodeInvalidPhone)

	_, err = f.svc.SendCode(ctx, "10.0.0.1", "0712345678", "Ab")
	mustErrCode(t, err, CodeNameTooShort)
}

func TestSendCodePerPhoneLimit(t *testing.T) {
	f := newVerificationFixture()
	ctx := context.Background()

	// Different IPs so only the phone budget is in play; past the resend
	// grace so every send counts.
	for i := 0; i < 3; i++ {
		ip := fmt.Sprintf("10.0.0.%d", i+1)
		if _, err := f.svc.SendCode(ctx, ip, "0712345678", "Maria Pop"); err != nil {
			t.Fatalf("send %d failed: %v", i+1, err)
		}
		f.clock.Advance(2 * time.Minute)
	}

	_, err := f.svc.SendCode(ctx, "10.0.0.9", "0712345678", "Maria Pop")
	apiErr := mustErrCode(t, err, CodeSMSLimitExceeded)
	if apiErr.RetryAfter <= 0 {
		t.Fatal("rate limit error must carry retry_after")
	}
}

func TestSendCodePerIPLimit(t *testing.T) {
	f := newVerificationFixture()
	ctx := context.Background()

	phones := []string{"0711111111", "0722222222", "0733333333", "0744444444", "0755555555"}
	for _, p := range phones {
		if _, err := f.svc.SendCode(ctx, "10.0.0.1", p, "Maria Pop"); err != nil {
			t.Fatalf("send to %s failed: %v", p, err)
		}
	}

	_, err := f.svc.SendCode(ctx, "10.0.0.1", "0766666666", "Maria Pop")
	mustErrCode(t, err, CodeIPLimitExceeded)
}

func TestSendCodeGatewayFailureKeepsCodeAndRefundsPhoneBudget(t *testing.T) {
	f := newVerificationFixture()
	ctx := context.Background()

	f.gateway.fail = true
	_, err := f.svc.SendCode(ctx, "10.0.0.1", "0712345678", "Maria Pop")
	mustErrCode(t, err, CodeSMSSendFailed)

	// The record survived the failed send.
	code := f.storedCode(t, "+40712345678")
	if len(code) != 6 {
		t.Fatalf("code not stored on gateway failure: %q", code)
	}

	// The phone budget was refunded: three further sends still succeed.
	f.gateway.fail = false
	for i := 0; i < 3; i++ {
		ip := fmt.Sprintf("10.1.0.%d", i+1)
		f.clock.Advance(2 * time.Minute)
		if _, err := f.svc.SendCode(ctx, ip, "0712345678", "Maria Pop"); err != nil {
			t.Fatalf("send %d after refund failed: %v", i+1, err)
		}
	}
}

func TestSendCodeResendGraceReusesCode(t *testing.T) {
	f := newVerificationFixture()
	ctx := context.Background()

	if _, err := f.svc.SendCode(ctx, "10.0.0.1", "0712345678", "Maria Pop"); err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	first := f.storedCode(t, "+40712345678")

	f.clock.Advance(30 * time.Second)
	if _, err := f.svc.SendCode(ctx, "10.0.0.2", "0712345678", "Maria Pop"); err != nil {
		t.Fatalf("resend failed: %v", err)
	}
	if second := f.storedCode(t, "+40712345678"); second != first {
		t.Fatal("resend within the grace period should reuse the stored code")
	}

	f.clock.Advance(2 * time.Minute)
	if _, err := f.svc.SendCode(ctx, "10.0.0.3", "0712345678", "Maria Pop"); err != nil {
		t.Fatalf("late resend failed: %v", err)
	}
	if third := f.storedCode(t, "+40712345678"); third == first {
		t.Fatal("resend past the grace period should mint a new code")
	}
}

func TestVerifyCodeHappyPath(t *testing.T) {
	f := newVerificationFixture()
	ctx := context.Background()

	if _, err := f.svc.SendCode(ctx, "10.0.0.1", "0712345678", "Maria Pop"); err != nil {
		t.Fatalf("SendCode failed: %v", err)
	}
	code := f.storedCode(t, "+40712345678")

	result, err := f.svc.VerifyCode(ctx, "0712345678", code)
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	if result.Customer == nil || result.Customer.Phone != "+40712345678" {
		t.Fatalf("unexpected customer: %+v", result.Customer)
	}
	if result.Customer.Name != "Maria Pop" {
		t.Fatalf("customer name not taken from verification: %q", result.Customer.Name)
	}

	claims, err := f.tokens.Parse(result.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Phone != "+40712345678" || claims.TokenType != "checkout_session" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyCodeNoPending(t *testing.T) {
	f := newVerificationFixture()
	_, err := f.svc.VerifyCode(context.Background(), "0712345678", "123456")
	mustErrCode(t, err, CodeNoPendingCode)
}

func TestVerifyCodeExpiredThenFreshCodeVerifies(t *testing.T) {
	f := newVerificationFixture()
	ctx := context.Background()

	f.svc.SendCode(ctx, "10.0.0.1", "0712345678", "Maria Pop")
	code := f.storedCode(t, "+40712345678")

	f.clock.Advance(6 * time.Minute)
	_, err := f.svc.VerifyCode(ctx, "0712345678", code)
	mustErrCode(t, err, CodeCodeExpired)

	if _, err := f.svc.SendCode(ctx, "10.0.0.2", "0712345678", "Maria Pop"); err != nil {
		t.Fatalf("second send failed: %v", err)
	}
	fresh := f.storedCode(t, "+40712345678")
	if _, err := f.svc.VerifyCode(ctx, "0712345678", fresh); err != nil {
		t.Fatalf("verify with fresh code failed: %v", err)
	}
}

func TestVerifyCodeWrongCodeThenBlocked(t *testing.T) {
	f := newVerificationFixture()
	ctx := context.Background()

	f.svc.SendCode(ctx, "10.0.0.1", "0712345678", "Maria Pop")
	code := f.storedCode(t, "+40712345678")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	for i := 0; i < 5; i++ {
		_, err := f.svc.VerifyCode(ctx, "0712345678", wrong)
		mustErrCode(t, err, CodeInvalidCode)
	}

	// 6th attempt is rejected before comparison, even with the right code.
	_, err := f.svc.VerifyCode(ctx, "0712345678", code)
	mustErrCode(t, err, CodeTooManyAttempts)

	// And it stays rejected while the block lasts.
	_, err = f.svc.VerifyCode(ctx, "0712345678", code)
	mustErrCode(t, err, CodeTooManyAttempts)
}

func TestVerifyCodeSingleUse(t *testing.T) {
	f := newVerificationFixture()
	ctx := context.Background()

	f.svc.SendCode(ctx, "10.0.0.1", "0712345678", "Maria Pop")
	code := f.storedCode(t, "+40712345678")

	if _, err := f.svc.VerifyCode(ctx, "0712345678", code); err != nil {
		t.Fatalf("first verify failed: %v", err)
	}
	_, err := f.svc.VerifyCode(ctx, "0712345678", code)
	mustErrCode(t, err, CodeNoPendingCode)
}

func TestVerifyRecordTransitions(t *testing.T) {
	f := newVerificationFixture()
	ctx := context.Background()

	f.svc.SendCode(ctx, "10.0.0.1", "0712345678", "Maria Pop")
	record, _ := f.store.Get(ctx, "+40712345678")
	if record.VerifiedAt != nil {
		t.Fatal("record must not be verified before the code is checked")
	}

	f.svc.VerifyCode(ctx, "0712345678", record.Code)
	record, _ = f.store.Get(ctx, "+40712345678")
	if record.VerifiedAt == nil || record.CustomerID == nil {
		t.Fatalf("verified record incomplete: %+v", record)
	}
	if record.ConsumedAt != nil {
		t.Fatal("verification must not be consumed before an order uses it")
	}
}
