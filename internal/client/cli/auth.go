package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/services"
	"github.com/dmitrijs2005/notekeeper/internal/client/validate"
)

const msgUnexpected = "An unexpected error occurred"

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Status == services.StatusAuthenticated
}

// Register prompts for the new account details and signs into it.
func (a *App) Register(ctx context.Context) error {
	name, err := a.ask("Full name")
	if err != nil {
		return err
	}
	email, err := a.ask("Email")
	if err != nil {
		return err
	}
	password, err := a.askSecret("Password")
	if err != nil {
		return err
	}
	confirm, err := a.askSecret("Confirm password")
	if err != nil {
		return err
	}

	if err := validate.Register(name, email, password, confirm); err != nil {
		a.printValidation(err)
		return err
	}

	res := a.session.Register(ctx, name, email, password)
	return a.report(res, func() string {
		return fmt.Sprintf("Welcome to NoteKeeper, %s! Your account has been created.", res.User.Name)
	})
}

// Login prompts for credentials and authenticates.
func (a *App) Login(ctx context.Context) error {
	email, err := a.ask("Email")
	if err != nil {
		return err
	}
	password, err := a.askSecret("Password")
	if err != nil {
		return err
	}

	if err := validate.Login(email, password); err != nil {
		a.printValidation(err)
		return err
	}

	res := a.session.Login(ctx, email, password)
	return a.report(res, func() string {
		return fmt.Sprintf("Welcome back, %s!", res.User.Name)
	})
}

// Logout always succeeds locally.
func (a *App) Logout(ctx context.Context) error {
	res := a.session.Logout(ctx)
	return a.report(res, func() string { return "Logged out successfully" })
}

func (a *App) Refresh(ctx context.Context) error {
	res := a.session.Refresh(ctx)
	return a.report(res, func() string { return "Session refreshed" })
}

// WhoAmI prints the signed-in user.
func (a *App) WhoAmI(context.Context) error {
	st := a.session.Snapshot()
	if st.User == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "Name:  %s\nEmail: %s\n", st.User.Name, st.User.Email)
	if st.User.ID != "" {
		fmt.Fprintf(a.out, "ID:    %s\n", st.User.ID)
	}
	if !st.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "Session expires at %s\n", st.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

// Profile updates name and/or email. Blank answers keep the current value.
func (a *App) Profile(ctx context.Context) error {
	name, err := a.ask("New name (blank to keep)")
	if err != nil {
		return err
	}
	email, err := a.ask("New email (blank to keep)")
	if err != nil {
		return err
	}

	if err := validate.Profile(name, email); err != nil {
		a.printValidation(err)
		return err
	}

	res := a.session.UpdateProfile(ctx, models.ProfileUpdate{Name: name, Email: email})
	return a.report(res, func() string { return "Profile updated" })
}

func (a *App) Password(ctx context.Context) error {
	current, err := a.askSecret("Current password")
	if err != nil {
		return err
	}
	next, err := a.askSecret("New password")
	if err != nil {
		return err
	}
	confirm, err := a.askSecret("Confirm new password")
	if err != nil {
		return err
	}

	if err := validate.PasswordChange(current, next, confirm); err != nil {
		a.printValidation(err)
		return err
	}

	res := a.session.ChangePassword(ctx, current, next)
	return a.report(res, func() string { return "Password changed" })
}

// report turns a session result into a notification. success is only
// called for successful results.
func (a *App) report(res services.Result, success func() string) error {
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = msgUnexpected
		}
		a.queue.Error(msg)
		return errors.New(msg)
	}
	a.queue.Success(success())
	return nil
}

func (a *App) printValidation(err error) {
	for _, fe := range validate.Fields(err) {
		fmt.Fprintf(a.out, "  %s: %s\n", fe.Field, fe.Message)
	}
}
