package scenarios

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/probatio/internal/await"
	"github.com/ternarybob/probatio/internal/verify"
)

// FormValidation checks the movement form's client-side constraints: the
// description field clips typed input at 60 characters and the amount field
// reduces arbitrary text to a signed locale number.
func FormValidation(c *Context) error {
	if err := c.Navigate(transactionsPath, "#new_descricao"); err != nil {
		return err
	}

	overlong := strings.Repeat("a", 61)
	c.Log.Info().Msg("Typing 61 characters into the description field")
	if err := c.SetField("#new_descricao", overlong); err != nil {
		return err
	}
	clipped, err := await.Value(c.Ctx, "description field settled", c.Cfg.Timeouts.UI,
		func(ctx context.Context) (string, bool, error) {
			v, err := c.FieldValue("#new_descricao")
			if err != nil {
				return "", false, err
			}
			// Typing is asynchronous; wait until at least the cap is
			// reached before judging the final length.
			return v, len(v) >= 60, nil
		})
	if err != nil {
		return err
	}
	if len(clipped) != 60 {
		return &verify.AssertionError{
			What:     "description field length",
			Expected: "60 characters",
			Actual:   fmt.Sprintf("%d characters", len(clipped)),
		}
	}

	// Reload so the sanitizer starts from a clean form state.
	if err := c.Navigate(transactionsPath, "#new_valor"); err != nil {
		return err
	}
	c.Log.Info().Msg("Typing mixed text into the amount field")
	if err := c.SetField("#new_valor", "abc-123,45xyz"); err != nil {
		return err
	}
	if err := await.Until(c.Ctx, "amount field sanitized", c.Cfg.Timeouts.UI,
		func(ctx context.Context) (bool, error) {
			v, err := c.FieldValue("#new_valor")
			return v == "-123,45", err
		}); err != nil {
		return err
	}
	c.Log.Info().Msg("Form constraints held for both fields")
	return nil
}
