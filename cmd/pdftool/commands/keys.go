package commands

import (
	"fmt"
	"strconv"
	"time"

	"go-pdftools/cmd/pdftool/ui"
	"go-pdftools/internal/apikey"
	"go-pdftools/internal/store"

	"github.com/spf13/cobra"
)

var (
	dbPath  string
	keyName string
	limit   int
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys of the server database",
}

var keysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Mint a new API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.OpenSQLite(cmd.Context(), dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		key, err := apikey.Generate()
		if err != nil {
			return err
		}
		if err := db.AddKey(cmd.Context(), apikey.Hash(key), keyName); err != nil {
			return err
		}
		ui.Success("created key %q", keyName)
		fmt.Fprintln(cmd.OutOrStdout(), key)
		ui.Warn("the key is shown once; only its digest is stored")
		return nil
	},
}

var keysRevokeCmd = &cobra.Command{
	Use:   "revoke KEY",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.OpenSQLite(cmd.Context(), dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		ok, err := db.RevokeKey(cmd.Context(), apikey.Hash(args[0]))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("key not found")
		}
		ui.Success("key revoked")
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent requests recorded by the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.OpenSQLite(cmd.Context(), dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.History(cmd.Context(), limit)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			status := "ok"
			if !e.Success {
				status = e.ErrorCode
			}
			rows = append(rows, []string{
				e.CreatedAt.Local().Format(time.DateTime),
				e.Tool,
				e.Filename,
				status,
				strconv.FormatInt(e.Duration.Milliseconds(), 10) + "ms",
			})
		}
		ui.Table([]string{"TIME", "TOOL", "FILE", "STATUS", "DURATION"}, rows)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{keysCmd, historyCmd} {
		c.PersistentFlags().StringVar(&dbPath, "db", "pdftools.db", "server database path")
	}
	keysCreateCmd.Flags().StringVar(&keyName, "name", "default", "label stored with the key")
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")

	keysCmd.AddCommand(keysCreateCmd, keysRevokeCmd)
	rootCmd.AddCommand(keysCmd, historyCmd)
}
