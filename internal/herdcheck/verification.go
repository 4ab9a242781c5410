package herdcheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/sleigh/internal/domain/reindeer"
	"github.com/okian/sleigh/internal/domain/sled"
)

// Check kinds.
const (
	KindGreeting     = "greeting"
	KindFailure      = "failure"
	KindSled         = "sled"
	KindStrength     = "strength"
	KindContest      = "contest"
	KindEmptyContest = "empty_contest"
)

const expectedGreeting = "Hello, world!"

// Check is a single request whose answer can be computed locally.
type Check struct {
	Kind string
	Path string
	Herd []reindeer.Reindeer
}

// Mismatch records a server answer that differs from the local one.
type Mismatch struct {
	Kind  string
	Input string
	Want  string
	Got   string
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("%s: %s for %s: want %s, got %s", ErrMismatch, m.Kind, m.Input, m.Want, m.Got)
}

func (m *Mismatch) Unwrap() error { return ErrMismatch }

// Verify runs the check against the server. It returns a *Mismatch when the
// answers differ and any other error when the request itself failed.
func (c Check) Verify(ctx context.Context, client *Client) error {
	switch c.Kind {
	case KindGreeting:
		got, err := client.Greet(ctx)
		if err != nil {
			return err
		}
		return compare(c.Kind, "/", expectedGreeting, got)

	case KindFailure:
		return client.Failure(ctx)

	case KindSled:
		got, err := client.Recalibrate(ctx, c.Path)
		if err != nil {
			return err
		}
		return compare(c.Kind, c.Path, sled.Recalibrate(c.Path), got)

	case KindStrength:
		got, err := client.Strength(ctx, c.Herd)
		if err != nil {
			return err
		}
		return compare(c.Kind, herdLabel(c.Herd), reindeer.CombinedStrength(c.Herd), got)

	case KindContest:
		want, err := reindeer.Contest(c.Herd)
		if err != nil {
			return err
		}
		got, err := client.Contest(ctx, c.Herd)
		if err != nil {
			return err
		}
		return compare(c.Kind, herdLabel(c.Herd), want, got)

	case KindEmptyContest:
		_, err := client.Contest(ctx, []reindeer.Reindeer{})
		var statusErr *StatusError
		switch {
		case errors.As(err, &statusErr) && statusErr.Status == http.StatusUnprocessableEntity:
			return nil
		case err != nil:
			return err
		default:
			return &Mismatch{Kind: c.Kind, Input: "[]", Want: "status 422", Got: "status 200"}
		}

	default:
		return fmt.Errorf("unknown check kind %q", c.Kind)
	}
}

func compare[T comparable](kind, input string, want, got T) error {
	if want == got {
		return nil
	}
	return &Mismatch{Kind: kind, Input: input, Want: fmt.Sprint(want), Got: fmt.Sprint(got)}
}

func herdLabel(herd []reindeer.Reindeer) string {
	if len(herd) == 0 {
		return "empty herd"
	}
	return fmt.Sprintf("herd of %d starting with %s", len(herd), herd[0].Name)
}
