package views

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/estudiopampa/portal/internal/portal/session"
	"github.com/estudiopampa/portal/pkg/portalsdk"
)

// Views renders the portal's resource pages on a terminal. Every view
// fetches through the SDK, so the auth transport's token refresh and forced
// logout apply uniformly.
type Views struct {
	sdk     *portalsdk.SDKClient
	session *session.Manager
	in      *bufio.Reader
	out     io.Writer
	log     *slog.Logger

	fetchers *fetcherSet
}

func New(sdk *portalsdk.SDKClient, sess *session.Manager, in io.Reader, out io.Writer, log *slog.Logger) *Views {
	return &Views{
		sdk:      sdk,
		session:  sess,
		in:       bufio.NewReader(in),
		out:      out,
		log:      log,
		fetchers: newFetcherSet(),
	}
}

// printf writes to the view's output.
func (v *Views) printf(format string, args ...any) {
	fmt.Fprintf(v.out, format, args...)
}

// table renders rows under a header using aligned columns.
func (v *Views) table(header []string, rows [][]string) {
	tw := tabwriter.NewWriter(v.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

// prompt asks for one line of input.
func (v *Views) prompt(label string) (string, error) {
	v.printf("%s: ", label)
	line, err := v.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question and only returns true on an explicit yes.
func (v *Views) confirm(question string) bool {
	answer, err := v.prompt(question + " [y/N]")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

// loading prints a fetch-in-flight marker and returns the function that
// clears it.
func (v *Views) loading(what string) func() {
	v.printf("loading %s...\n", what)
	return func() {}
}

// fetchCtx derives the context for a named view's fetch, cancelling the
// previous in-flight fetch for that view so a stale response can never
// overwrite a newer one.
func (v *Views) fetchCtx(ctx context.Context, view string) (context.Context, context.CancelFunc) {
	return v.fetchers.begin(ctx, view)
}

// pageFooter prints the pagination status under a table.
func (v *Views) pageFooter(count, shown int, hasNext bool) {
	v.printf("%d of %d\n", shown, count)
	if hasNext {
		v.printf("more available: pass -page or -all\n")
	}
}
