package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MarcoMadridG27/Thesaurus/internal/auth"
	"github.com/MarcoMadridG27/Thesaurus/internal/cli"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage your account session",
		Long:  `Sign in, register a company account and inspect the signed-in profile.`,
	}

	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authSignupCmd())
	cmd.AddCommand(authValidateRUCCmd())
	cmd.AddCommand(authProfileCmd())
	cmd.AddCommand(authLogoutCmd())

	return cmd
}

func authLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: withApp(false, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			client, err := a.authClient()
			if err != nil {
				return err
			}

			in := cli.NewLineReader(cmd.InOrStdin(), cmd.OutOrStdout())
			if email, err = in.Ask(ctx, "Email", email); err != nil {
				return err
			}
			if password, err = in.Ask(ctx, "Password", password); err != nil {
				return err
			}

			token, err := client.Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := a.tokens.Save(ctx, token); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Sesión iniciada como "+email))
			if exp, ok := auth.ExpiresAt(token); ok {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("Expira: "+exp.Local().Format("2006-01-02 15:04")))
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")

	return cmd
}

func authSignupCmd() *cobra.Command {
	var in model.SignUp

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a company account",
		RunE: withApp(false, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			client, err := a.authClient()
			if err != nil {
				return err
			}

			r := cli.NewLineReader(cmd.InOrStdin(), cmd.OutOrStdout())
			if in.RUC, err = r.Ask(ctx, "RUC", in.RUC); err != nil {
				return err
			}
			if in.Email, err = r.Ask(ctx, "Email", in.Email); err != nil {
				return err
			}
			if in.Password, err = r.Ask(ctx, "Password", in.Password); err != nil {
				return err
			}

			token, result, err := client.Register(ctx, in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess("Cuenta registrada para el RUC "+in.RUC))
			if token == nil {
				fmt.Fprintln(out, cli.FormatWarning(result.Message))
				return nil
			}
			if err := a.tokens.Save(ctx, token); err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess("Sesión iniciada como "+in.Email))
			return nil
		}),
	}

	cmd.Flags().StringVar(&in.RUC, "ruc", "", "company RUC (11 digits)")
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password (prompted when omitted)")

	return cmd
}

func authValidateRUCCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-ruc <ruc>",
		Short: "Look up a company in the tax registry",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(false, func(cmd *cobra.Command, a *app, args []string) error {
			client, err := a.authClient()
			if err != nil {
				return err
			}
			data, err := client.ValidateRUC(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(data.RazonSocial, rucLines(*data)))
			return nil
		}),
	}
}

func authProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in company profile",
		RunE: withApp(false, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			token, err := a.requireToken(ctx)
			if err != nil {
				return err
			}
			client, err := a.authClient()
			if err != nil {
				return err
			}
			profile, err := client.Profile(ctx, token.AccessToken)
			if err != nil {
				return err
			}

			lines := rucLines(profile.RucData) + "\nEmail:      " + profile.Email
			if profile.LastLogin != "" {
				lines += "\nÚltimo acceso: " + profile.LastLogin
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(profile.RazonSocial, lines))
			return nil
		}),
	}
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: withApp(false, func(cmd *cobra.Command, a *app, _ []string) error {
			if err := a.tokens.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Sesión cerrada"))
			return nil
		}),
	}
}

func rucLines(d model.RucData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "RUC:        %s\nEstado:     %s\nCondición:  %s", d.RUC, d.Estado, d.Condicion)
	if d.Direccion != "" {
		fmt.Fprintf(&b, "\nDirección:  %s", d.Direccion)
	}
	if d.Distrito != "" {
		fmt.Fprintf(&b, "\nUbicación:  %s", strings.Join(nonEmpty(d.Distrito, d.Provincia, d.Departamento), ", "))
	}
	return b.String()
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
