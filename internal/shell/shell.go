package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/salesreport/internal/client"
)

const prompt = "> "

const helpText = `commands:
  upload <path>          upload a CSV file
  report <start> <end>   generate a report, dates as YYYY-MM-DD
  email                  email the last report for the uploaded file
  show                   print the current report and uploaded file
  help                   show this help
  quit                   exit`

// Shell reads commands from in and runs them against one Controller. The
// session lasts as long as the Shell.
type Shell struct {
	ctrl    *client.Controller
	console *Console
	in      io.Reader
	out     io.Writer
}

// New builds a Shell talking to serverURL.
func New(serverURL string, in io.Reader, out io.Writer, opts ...client.Option) *Shell {
	console := NewConsole(out)
	return &Shell{
		ctrl:    client.New(serverURL, console, console, opts...),
		console: console,
		in:      in,
		out:     out,
	}
}

// Run processes commands until quit, end of input or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	fmt.Fprintln(s.out, `type "help" for commands`)

	for {
		fmt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if quit := s.Exec(ctx, scanner.Text()); quit {
			return nil
		}
	}
}

// Exec runs a single command line and reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}

	switch strings.ToLower(args[0]) {
	case "upload":
		// Paths may contain spaces.
		path := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), args[0]))
		s.ctrl.UploadFile(ctx, client.PathPicker{Path: path})
	case "report":
		s.ctrl.GenerateReport(ctx, arg(args, 1), arg(args, 2))
	case "email":
		s.ctrl.SendEmail(ctx)
	case "show":
		s.console.Show()
		if path := s.ctrl.Session().UploadedFilePath(); path != "" {
			fmt.Fprintf(s.out, "uploaded: %s\n", path)
		} else {
			fmt.Fprintln(s.out, "uploaded: (none)")
		}
	case "help", "?":
		fmt.Fprintln(s.out, helpText)
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(s.out, "unknown command %q, type \"help\"\n", args[0])
	}
	return false
}

// Controller returns the controller behind the shell.
func (s *Shell) Controller() *client.Controller {
	return s.ctrl
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
