package checkout

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"backend/internal/models"
	"backend/internal/phone"
	"backend/internal/sms"
)

const minCustomerNameLen = 3

// VerificationService drives the phone verification state machine:
// NONE -> CODE_SENT -> VERIFIED, with a BLOCKED overlay once the per-code
// attempt budget is burned. A verified record is the prerequisite (and the
// single-use ticket) for order creation.
type VerificationService struct {
	verifications VerificationStore
	customers     CustomerStore
	limiter       *Limiter
	gateway       sms.Gateway
	tokens        *TokenIssuer

	codeTTL     time.Duration
	resendGrace time.Duration
	smsTimeout  time.Duration
	now         func() time.Time
}

func NewVerificationService(
	verifications VerificationStore,
	customers CustomerStore,
	limiter *Limiter,
	gateway sms.Gateway,
	tokens *TokenIssuer,
	codeTTL, resendGrace, smsTimeout time.Duration,
) *VerificationService {
	return &VerificationService{
		verifications: verifications,
		customers:     customers,
		limiter:       limiter,
		gateway:       gateway,
		tokens:        tokens,
		codeTTL:       codeTTL,
		resendGrace:   resendGrace,
		smsTimeout:    smsTimeout,
		now:           time.Now,
	}
}

// SendCodeResult is returned to the client; the phone is masked.
type SendCodeResult struct {
	PhoneMasked      string `json:"phone_masked"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

// VerifyResult carries the checkout session token and the customer it was
// issued for.
type VerifyResult struct {
	Token    string           `json:"token"`
	Customer *models.Customer `json:"customer"`
}

// SendCode validates the request, charges the SMS budgets, stores a fresh
// 6-digit code (or re-uses one sent moments ago) and hands it to the
// gateway. The code is stored before the gateway call, so a slow or failed
// send never loses the verification record.
func (s *VerificationService) SendCode(ctx context.Context, clientIP, rawPhone, name string) (*SendCodeResult, error) {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return nil, validationError(CodeInvalidPhone, "phone must be a Romanian mobile number")
	}

	name = strings.TrimSpace(name)
	if len([]rune(name)) < minCustomerNameLen {
		return nil, validationError(CodeNameTooShort, "name must be at least 3 characters")
	}

	// IP budget is charged unconditionally, including for sends that later
	// fail at the gateway; it exists to stop abuse, not to meter delivery.
	retryAfter, allowed, err := s.limiter.Allow(ctx, smsIPKey(clientIP), SMSPerIPLimit, SMSPerIPWindow)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, rateLimitedError(CodeIPLimitExceeded, "too many verification requests from this address", retryAfter)
	}

	retryAfter, allowed, err = s.limiter.Allow(ctx, smsPhoneKey(normalized), SMSPerPhoneLimit, SMSPerPhoneWindow)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, rateLimitedError(CodeSMSLimitExceeded, "sms limit for this phone reached", retryAfter)
	}

	now := s.now()
	record, err := s.verifications.Get(ctx, normalized)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// A resend shortly after the previous one re-uses the stored code, so a
	// user whose SMS was delayed is not juggling two different codes.
	code := ""
	if record != nil && record.VerifiedAt == nil &&
		now.Sub(record.LastSentAt) < s.resendGrace && now.Before(record.CodeExpires) {
		code = record.Code
	}
	if code == "" {
		code, err = generateCode()
		if err != nil {
			return nil, err
		}
	}

	fresh := &models.PhoneVerification{
		Phone:       normalized,
		Name:        name,
		Code:        code,
		CodeExpires: now.Add(s.codeTTL),
		Attempts:    0,
		LastSentAt:  now,
	}
	if err := s.verifications.Put(ctx, fresh); err != nil {
		return nil, err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.smsTimeout)
	defer cancel()
	message := fmt.Sprintf("Codul tau de verificare este %s. Expira in 5 minute.", code)
	if err := s.gateway.Send(sendCtx, normalized, message); err != nil {
		log.Printf("[VERIFY] [ERROR] sms gateway send failed for %s: %v", phone.Mask(normalized), err)
		// The code stays stored and usable; give the phone budget back so a
		// retry is not penalized for our upstream's failure.
		if refundErr := s.limiter.Refund(ctx, smsPhoneKey(normalized)); refundErr != nil {
			log.Printf("[VERIFY] [ERROR] limiter refund failed: %v", refundErr)
		}
		return nil, &Error{
			Status:  502,
			Code:    CodeSMSSendFailed,
			Message: "could not deliver the sms, please retry",
		}
	}

	log.Printf("[VERIFY] [INFO] code sent to %s", phone.Mask(normalized))
	return &SendCodeResult{
		PhoneMasked:      phone.Mask(normalized),
		ExpiresInSeconds: int(s.codeTTL / time.Second),
	}, nil
}

// VerifyCode consumes one attempt against the pending code. On a match it
// marks the record verified, upserts the customer and issues the checkout
// session token.
func (s *VerificationService) VerifyCode(ctx context.Context, rawPhone, code string) (*VerifyResult, error) {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return nil, validationError(CodeInvalidPhone, "phone must be a Romanian mobile number")
	}

	record, err := s.verifications.Get(ctx, normalized)
	if errors.Is(err, ErrNotFound) {
		return nil, validationError(CodeNoPendingCode, "no verification code pending for this phone")
	}
	if err != nil {
		return nil, err
	}
	if record.VerifiedAt != nil {
		// The code was already consumed; a new one must be requested.
		return nil, validationError(CodeNoPendingCode, "no verification code pending for this phone")
	}

	now := s.now()
	if record.BlockedUntil != nil && now.Before(*record.BlockedUntil) {
		e := validationError(CodeTooManyAttempts, "too many attempts, request a new code")
		e.RetryAfter = record.BlockedUntil.Sub(now)
		return nil, e
	}
	if now.After(record.CodeExpires) {
		return nil, validationError(CodeCodeExpired, "verification code expired, request a new one")
	}

	attempts, err := s.verifications.IncrementAttempts(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if attempts > VerifyMaxAttempts {
		// Block for the remainder of the code's lifetime; even the correct
		// code is rejected from here on.
		if err := s.verifications.Block(ctx, normalized, record.CodeExpires); err != nil {
			return nil, err
		}
		return nil, validationError(CodeTooManyAttempts, "too many attempts, request a new code")
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(code)), []byte(record.Code)) != 1 {
		return nil, validationError(CodeInvalidCode, "verification code does not match")
	}

	customer, err := s.customers.UpsertByPhone(ctx, normalized, record.Name)
	if err != nil {
		return nil, err
	}

	if err := s.verifications.MarkVerified(ctx, normalized, now, customer.ID); err != nil {
		if errors.Is(err, ErrConflict) {
			// A concurrent request verified first; this code is spent.
			return nil, validationError(CodeNoPendingCode, "no verification code pending for this phone")
		}
		return nil, err
	}

	token, err := s.tokens.Issue(normalized, customer.ID)
	if err != nil {
		return nil, err
	}

	log.Printf("[VERIFY] [INFO] phone verified: %s", phone.Mask(normalized))
	return &VerifyResult{Token: token, Customer: customer}, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
