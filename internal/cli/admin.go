package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curesight/client-go/internal/console"
	"github.com/curesight/client-go/internal/gateway"
	"github.com/curesight/client-go/internal/session"
)

var adminToken string

// editor is the shared surface of the rules and content editors.
type editor interface {
	Load(ctx context.Context) error
	Edit(raw string) error
	Save(ctx context.Context) error
	Raw() string
}

func init() {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Operator console",
	}
	adminCmd.PersistentFlags().StringVarP(&adminToken, "token", "t", "", "Session token from a previous login")

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and print a session token",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			password, err := readPassword(cmd)
			if err != nil {
				exitErr("login", err)
			}

			gw := newGateway()
			mgr := session.NewManager(gw)
			if err := mgr.Login(cmd.Context(), username, password); err != nil {
				exitErr("login", err)
			}
			printJSON(map[string]string{"token": mgr.Token()})
		},
	}
	loginCmd.Flags().StringP("username", "u", "admin", "Operator username")
	loginCmd.Flags().StringP("password", "p", "", "Operator password (prompted when omitted)")

	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "List submitted queries",
		Run: func(cmd *cobra.Command, args []string) {
			logbook := console.NewLogbook(adminGateway())
			if err := logbook.Refresh(cmd.Context()); err != nil {
				exitErr("logs", err)
			}
			printJSON(logbook.Entries())
		},
	}

	noteCmd := &cobra.Command{
		Use:   "note <query_id> <text>",
		Short: "Attach a note to a query",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			gw := adminGateway()
			logbook := console.NewLogbook(gw)
			if err := logbook.Refresh(cmd.Context()); err != nil {
				exitErr("logs", err)
			}

			logbook.Select(args[0])
			if logbook.Selected() == nil {
				exitErr("note", fmt.Errorf("no query with id %q", args[0]))
			}

			composer := console.NewNoteComposer(gw, logbook)
			composer.SetText(args[1])
			if err := composer.Submit(cmd.Context()); err != nil {
				exitErr("note", err)
			}
			fmt.Println("note saved")
		},
	}

	rulesCmd := editorCommand("rules", "red-flag rule set", func(gw *gateway.Client) editor {
		return console.NewRulesEditor(gw)
	})
	contentCmd := editorCommand("content", "guidance content", func(gw *gateway.Client) editor {
		return console.NewContentEditor(gw)
	})

	adminCmd.AddCommand(loginCmd, logsCmd, noteCmd, rulesCmd, contentCmd, shellCommand())
	RootCmd.AddCommand(adminCmd)
}

// editorCommand builds the get/set pair shared by the rules and content
// editors.
func editorCommand(name, what string, build func(gw *gateway.Client) editor) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: "Edit the " + what,
	}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Print the current " + what,
		Run: func(cmd *cobra.Command, args []string) {
			ed := build(adminGateway())
			if err := ed.Load(cmd.Context()); err != nil {
				exitErr(name, err)
			}
			fmt.Println(ed.Raw())
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <file>",
		Short: "Replace the " + what + " from a JSON file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				exitErr("read file", err)
			}

			ed := build(adminGateway())
			if err := ed.Edit(string(raw)); err != nil {
				exitErr(name, err)
			}
			if err := ed.Save(cmd.Context()); err != nil {
				exitErr(name, err)
			}
			fmt.Println(ed.Raw())
		},
	}

	cmd.AddCommand(getCmd, setCmd)
	return cmd
}

func adminGateway() *gateway.Client {
	if adminToken == "" {
		exitErr("auth", fmt.Errorf("no token: run `curesight admin login` and pass --token"))
	}
	gw := newGateway()
	gw.UseToken(adminToken)
	return gw
}

func readPassword(cmd *cobra.Command) (string, error) {
	password, _ := cmd.Flags().GetString("password")
	if password != "" {
		return password, nil
	}
	fmt.Fprint(os.Stderr, "password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
