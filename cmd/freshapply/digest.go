package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/freshapply/internal/digest"
	"github.com/jonathan/freshapply/internal/scoring"
)

var (
	digestStdout bool
	digestTier   string
	digestHTML   bool
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Render the Markdown digest or HTML dashboard of stored postings",
	Long: `Evaluate every stored posting as of now and write the tiered Markdown digest to the digest directory, or to stdout.
With --html the output is the filterable HTML dashboard with CSV export instead.`,
	RunE:  runDigest,
}

func init() {
	digestCmd.Flags().BoolVar(&digestStdout, "stdout", false, "Print the digest instead of writing a file")
	digestCmd.Flags().StringVarP(&digestTier, "tier", "t", "", `Only include one tier ("Apply Today", "Apply This Week", "Watch List")`)
	digestCmd.Flags().BoolVar(&digestHTML, "html", false, "Render the HTML dashboard instead of Markdown")
	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, _ []string) error {
	var tier scoring.Tier
	if digestTier != "" {
		t, ok := scoring.ParseTier(digestTier)
		if !ok {
			return fmt.Errorf("unknown tier %q", digestTier)
		}
		tier = t
	}

	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openStore(ctx); err != nil {
		return err
	}

	now := clock()
	d, err := a.storedDigest(ctx, now)
	if err != nil {
		return err
	}
	if tier != "" {
		d = digest.New(now, d.Filter(tier), d.DisplayName)
	}

	render, write, label := d.Render, digest.WriteFile, "Digest"
	if digestHTML {
		render, write, label = d.RenderHTML, digest.WriteHTMLFile, "Dashboard"
	}

	out := cmd.OutOrStdout()
	if digestStdout {
		return render(out)
	}
	path, err := write(a.cfg.DigestDir, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s written to %s (%d postings)\n", label, path, len(d.Evaluations))
	return nil
}
