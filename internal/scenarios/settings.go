package scenarios

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/probatio/internal/await"
)

const settingsPath = "/configuracoes"

func darkModeActive(c *Context) (bool, error) {
	var active bool
	err := c.Eval(`document.documentElement.classList.contains('dark')`, &active)
	return active, err
}

func waitDarkMode(c *Context, want bool) error {
	return await.Until(c.Ctx, fmt.Sprintf("dark mode = %t", want), c.Cfg.Timeouts.UI,
		func(ctx context.Context) (bool, error) {
			active, err := darkModeActive(c)
			return active == want, err
		})
}

// DarkModeToggle flips the theme twice and checks the page ends up back in
// its original state. The toggle persists server-side, so the double flip
// also keeps the account's stored preference unchanged.
func DarkModeToggle(c *Context) error {
	if err := c.Navigate(settingsPath, "#dark-mode-toggle"); err != nil {
		return err
	}

	initial, err := darkModeActive(c)
	if err != nil {
		return err
	}
	c.Log.Info().Bool("initial", initial).Msg("Toggling dark mode twice")

	c.StepDelay()
	if err := c.Click("#dark-mode-toggle"); err != nil {
		return err
	}
	if err := waitDarkMode(c, !initial); err != nil {
		return err
	}

	c.StepDelay()
	if err := c.Click("#dark-mode-toggle"); err != nil {
		return err
	}
	if err := waitDarkMode(c, initial); err != nil {
		return err
	}
	c.Log.Info().Msg("Dark mode restored to its initial state")
	return nil
}

// ProfileAndPassword saves the profile form and exercises the password
// form's rejection paths. The password is never actually changed; a
// mismatched confirmation and a wrong current password both have to be
// refused, which proves the client and server checks without disturbing
// the account the rest of the suite logs in with.
func ProfileAndPassword(c *Context) error {
	if err := c.Navigate(settingsPath, "#profile-form"); err != nil {
		return err
	}

	c.Log.Info().Msg("Saving profile")
	if err := c.SetField("#profile-form input[name='city']", "Cidade Teste"); err != nil {
		return err
	}
	c.StepDelay()
	if err := c.Click("#save-profile-button"); err != nil {
		return err
	}
	if _, err := c.Dialogs.Accept("", c.Cfg.Timeouts.UI); err != nil {
		return fmt.Errorf("profile save produced no feedback dialog: %w", err)
	}

	c.Log.Info().Msg("Submitting mismatched password confirmation")
	if err := c.SetField("#current_password", c.Cfg.App.Password); err != nil {
		return err
	}
	if err := c.SetField("#new_password", "novaSenhaValida1"); err != nil {
		return err
	}
	if err := c.SetField("#confirm_new_password", "confirmacaoDiferente"); err != nil {
		return err
	}
	c.StepDelay()
	if err := c.Click("#save-password-button"); err != nil {
		return err
	}
	if _, err := c.Dialogs.Accept("não correspondem", c.Cfg.Timeouts.UI); err != nil {
		return err
	}

	c.Log.Info().Msg("Submitting wrong current password")
	if err := c.SetField("#current_password", "senhaErrada"); err != nil {
		return err
	}
	if err := c.SetField("#new_password", "novaSenhaValida1"); err != nil {
		return err
	}
	if err := c.SetField("#confirm_new_password", "novaSenhaValida1"); err != nil {
		return err
	}
	c.StepDelay()
	if err := c.Click("#save-password-button"); err != nil {
		return err
	}
	msg, err := c.Dialogs.Accept("", c.Cfg.Timeouts.UI)
	if err != nil {
		return err
	}
	if msg == "Senha alterada com sucesso!" {
		return fmt.Errorf("password change accepted with wrong current password")
	}
	for _, extra := range c.Dialogs.Drain(time.Second) {
		c.Log.Debug().Str("message", extra).Msg("Post-password dialog")
	}
	c.Log.Info().Msg("Password form rejected both invalid submissions")
	return nil
}
