package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curesight/client-go/internal/console"
	"github.com/curesight/client-go/internal/models"
	"github.com/curesight/client-go/internal/session"
)

// shellCommand is the interactive operator console: one authenticated session
// driving the logbook, both editors, and the note composer.
func shellCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive operator console",
		Run:   runShell,
	}
	cmd.Flags().StringP("username", "u", "admin", "Operator username")
	cmd.Flags().StringP("password", "p", "", "Operator password (prompted when omitted)")
	return cmd
}

func runShell(cmd *cobra.Command, args []string) {
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
	fmt.Println("authenticated; type help for commands")

	logbook := console.NewLogbook(gw)
	composer := console.NewNoteComposer(gw, logbook)
	editors := map[string]editor{
		"rules":   console.NewRulesEditor(gw),
		"content": console.NewContentEditor(gw),
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if mgr.State() != session.Authenticated {
			fmt.Println(mgr.LastFailure())
			return
		}

		fmt.Print("admin> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		verb, rest, _ := strings.Cut(line, " ")
		switch verb {
		case "help":
			fmt.Println(shellHelp)
		case "logs":
			if err := logbook.Refresh(cmd.Context()); err != nil {
				fmt.Println(err)
				continue
			}
			printLogEntries(logbook.Entries(), logbook.Selected())
		case "select":
			logbook.Select(strings.TrimSpace(rest))
			if logbook.Selected() == nil {
				fmt.Println("no such entry")
			}
		case "note":
			if logbook.Selected() == nil {
				fmt.Println("select an entry first")
				continue
			}
			composer.SetText(rest)
			if err := composer.Submit(cmd.Context()); err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println("note saved")
		case "rules", "content":
			runEditor(cmd.Context(), editors[verb], rest)
		case "logout":
			mgr.Logout()
			return
		case "exit", "quit":
			return
		default:
			fmt.Println("unknown command; type help")
		}
	}
}

func runEditor(ctx context.Context, ed editor, rest string) {
	sub, arg, _ := strings.Cut(strings.TrimSpace(rest), " ")
	switch sub {
	case "", "show":
		if err := ed.Load(ctx); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(ed.Raw())
	case "edit":
		if err := ed.Edit(arg); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("draft updated")
	case "save":
		if err := ed.Save(ctx); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(ed.Raw())
	default:
		fmt.Println("usage: rules|content [show|edit <json>|save]")
	}
}

func printLogEntries(entries []models.QueryLogEntry, selected *models.QueryLogEntry) {
	for _, e := range entries {
		marker := " "
		if selected != nil && selected.ID == e.ID {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s  %-5s  %s", marker, e.ID, e.InputType, e.CreatedAt)
		if e.SymptomText != "" {
			line += "  " + e.SymptomText
		}
		if e.Analysis != nil {
			line += fmt.Sprintf("  [%s/%s]", e.Analysis.Category, e.Analysis.Severity)
		}
		fmt.Println(line)
	}
	if len(entries) == 0 {
		fmt.Println("no queries")
	}
}

const shellHelp = `commands:
  logs                     refresh and list submitted queries
  select <id>              choose the entry notes attach to
  note <text>              attach a note to the selected entry
  rules [show|edit <json>|save]
  content [show|edit <json>|save]
  logout                   drop the session and exit
  exit`
