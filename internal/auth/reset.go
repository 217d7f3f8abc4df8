package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/markov84/MarkLight-Ltd/internal/redisx"
)

var ErrResetTokenInvalid = errors.New("invalid or expired reset token")

// Mailer is the outbound mail dependency; see notify.SMTPMailer.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// PasswordReset issues single-use reset tokens with a one-hour TTL. Tokens
// live in Redis only, so an unused token expires without cleanup.
type PasswordReset struct {
	Users       *Repo
	Redis       *redis.Client
	Mail        Mailer
	FrontendURL string
	Log         *slog.Logger
}

func (p *PasswordReset) Start(ctx context.Context, email string) error {
	u, err := p.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	token := hex.EncodeToString(buf)

	key := fmt.Sprintf(redisx.KeyPasswordReset, token)
	if err := p.Redis.Set(ctx, key, u.ID, redisx.TTLPasswordReset).Err(); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", p.FrontendURL, token)
	body := fmt.Sprintf(`<p>Click <a href="%s">here</a> to reset your password. This link is valid for 1 hour.</p>`, resetURL)
	if err := p.Mail.Send(u.Email, "Reset your password", body); err != nil {
		p.Log.Warn("reset mail not sent", "user_id", u.ID, "err", err)
		return err
	}
	return nil
}

func (p *PasswordReset) Complete(ctx context.Context, token, password string) error {
	key := fmt.Sprintf(redisx.KeyPasswordReset, token)
	userID, err := p.Redis.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrResetTokenInvalid
	}
	if err != nil {
		return err
	}
	return p.Users.SetPassword(ctx, userID, password)
}
