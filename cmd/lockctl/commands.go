package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/EternisAI/lockfleet/internal/api/http/dto"
	"github.com/EternisAI/lockfleet/internal/auth"
	"github.com/EternisAI/lockfleet/internal/credentials"
	"github.com/EternisAI/lockfleet/internal/db"
	"github.com/EternisAI/lockfleet/internal/devices"
	"github.com/spf13/cobra"
)

func printRaw(cmd *cobra.Command, raw []byte) {
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(raw)))
}

func devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List devices bound to the app account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var list []devices.Device
			raw, err := client.result(cmd.Context(), http.MethodGet, "/api/v1/devices", nil, &list)
			if err != nil {
				return err
			}
			if output == "json" {
				printRaw(cmd, raw)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tONLINE\tCATEGORY")
			for _, d := range list {
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", d.ID, d.Name, d.Online, d.Category)
			}
			return w.Flush()
		},
	}
}

func deviceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "device <device-id>",
		Short: "Show device details and status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var d devices.Device
			raw, err := client.result(cmd.Context(), http.MethodGet, "/api/v1/devices/"+url.PathEscape(args[0]), nil, &d)
			if err != nil {
				return err
			}
			if output == "json" {
				printRaw(cmd, raw)
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:       %s\n", d.ID)
			fmt.Fprintf(out, "Name:     %s\n", d.Name)
			fmt.Fprintf(out, "Online:   %t\n", d.Online)
			fmt.Fprintf(out, "Product:  %s\n", d.ProductName)
			for _, s := range d.Status {
				fmt.Fprintf(out, "  %s = %v\n", s.Code, s.Value)
			}
			return nil
		},
	}
}

func provisionCmd() *cobra.Command {
	var (
		deviceID  string
		name      string
		code      string
		codeStdin bool
		from      string
		until     string
		oneTime   bool
		phone     string
	)
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create a temporary access code on a lock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if codeStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading code from stdin: %w", err)
				}
				code = strings.TrimSpace(line)
			}
			if code == "" {
				return fmt.Errorf("--code or --code-stdin is required")
			}

			now := time.Now()
			start, err := parseTime(from, now)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end, err := parseTime(until, start.Add(24*time.Hour))
			if err != nil {
				return fmt.Errorf("--until: %w", err)
			}

			req := dto.TempPasswordRequest{
				Name:          name,
				Password:      code,
				EffectiveTime: start.Unix(),
				InvalidTime:   end.Unix(),
				Type:          credentials.TypeReusable,
				Phone:         phone,
			}
			if oneTime {
				req.Type = credentials.TypeOneTime
			}

			var res dto.TempPasswordResponse
			path := "/api/v1/devices/" + url.PathEscape(deviceID) + "/temp-passwords"
			raw, err := client.result(cmd.Context(), http.MethodPost, path, req, &res)
			if err != nil {
				return err
			}
			if output == "json" {
				printRaw(cmd, raw)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created temporary password %s on %s (valid %s to %s)\n",
				res.ID, deviceID, start.Format(time.RFC3339), end.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&deviceID, "device", "", "Device ID (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name of the code (required)")
	cmd.Flags().StringVar(&code, "code", "", "Access code")
	cmd.Flags().BoolVar(&codeStdin, "code-stdin", false, "Read the access code from stdin")
	cmd.Flags().StringVar(&from, "from", "", "Start of validity, RFC3339 or Unix seconds (default now)")
	cmd.Flags().StringVar(&until, "until", "", "End of validity, RFC3339 or Unix seconds (default from + 24h)")
	cmd.Flags().BoolVar(&oneTime, "one-time", false, "Code works only once")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number to notify")
	_ = cmd.MarkFlagRequired("device")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func unlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <device-id>",
		Short: "Open a lock remotely",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := client.result(cmd.Context(), http.MethodPost, "/api/v1/devices/"+url.PathEscape(args[0])+"/unlock", nil, nil)
			if err != nil {
				return err
			}
			if output == "json" {
				printRaw(cmd, raw)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unlocked %s\n", args[0])
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Log in and print an operator token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("LOCKCTL_PASSWORD")
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading password from stdin: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			raw, err := client.call(cmd.Context(), http.MethodPost, "/auth/login",
				dto.LoginRequest{Username: username, Password: password})
			if err != nil {
				return err
			}
			if output == "json" {
				printRaw(cmd, raw)
				return nil
			}
			var resp dto.LoginResponse
			if err := json.Unmarshal(raw, &resp); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Operator username (required)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func hashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <secret>",
		Short: "Print the bcrypt hash of an operator password or API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	var schema string
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply audit database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := os.Getenv("DATABASE_URL")
			if dsn == "" {
				return fmt.Errorf("DATABASE_URL environment variable is required")
			}
			if status {
				version, err := db.SchemaVersion(dsn, schema)
				if err != nil {
					return fmt.Errorf("read schema version: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schema %s is at version %d.\n", schema, version)
				return nil
			}
			if err := db.RunMigrations(dsn, schema); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "lockfleet", "Database schema")
	cmd.Flags().BoolVar(&status, "status", false, "Print the applied migration version instead of migrating")
	return cmd
}

// parseTime accepts RFC3339 or Unix seconds; empty yields def.
func parseTime(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 0 {
		return time.Unix(secs, 0), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

func passwordsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "passwords <device-id>",
		Short: "List and manage temporary passwords on a lock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/devices/" + url.PathEscape(args[0]) + "/temp-passwords"
			if all {
				path += "?valid=false"
			}
			var list []devices.TempCode
			raw, err := client.result(cmd.Context(), http.MethodGet, path, nil, &list)
			if err != nil {
				return err
			}
			if output == "json" {
				printRaw(cmd, raw)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPHASE\tVALID UNTIL")
			for _, c := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Phase, time.Unix(c.InvalidTime, 0).UTC().Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include deleted and expired passwords")
	cmd.AddCommand(
		passwordActionCmd("freeze", "Suspend a temporary password", http.MethodPut, "/freeze", "Froze"),
		passwordActionCmd("unfreeze", "Reactivate a frozen temporary password", http.MethodPut, "/unfreeze", "Unfroze"),
		passwordActionCmd("delete", "Delete a temporary password", http.MethodDelete, "", "Deleted"),
	)
	return cmd
}

func passwordActionCmd(name, short, method, suffix, verb string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <device-id> <password-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/devices/" + url.PathEscape(args[0]) + "/temp-passwords/" + url.PathEscape(args[1]) + suffix
			raw, err := client.result(cmd.Context(), method, path, nil, nil)
			if err != nil {
				return err
			}
			if output == "json" {
				printRaw(cmd, raw)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s temporary password %s\n", verb, args[1])
			return nil
		},
	}
}
