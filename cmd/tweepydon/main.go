package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shuuji3/tweepy-mastodon/internal/theme"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tweepydon",
		Short:         "Tweepy v1.1 calls answered by a Mastodon server",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			theme.PrintBanner(a.out)
			_ = cmd.Help()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) { a.close() },
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.PersistentFlags().StringVar(&a.cfgPath, "config", a.cfgPath, "config path")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print v1.1 JSON instead of text")

	root.AddCommand(
		initCmd(a),
		whoamiCmd(a),
		timelineCmd(a),
		userCmd(a),
		showCmd(a),
		postCmd(a),
		deleteCmd(a),
		followersCmd(a),
		followFollowersCmd(a),
		syncCmd(a),
		historyCmd(a),
		authCmd(a),
	)
	root.AddCommand(statusActionCmds(a)...)
	root.AddCommand(relationshipCmds(a)...)
	return root
}

func execute(out, errOut io.Writer, args []string) error {
	a := newApp(out, errOut)
	root := newRootCmd(a)
	root.SetArgs(args)
	defer a.close()
	return root.Execute()
}

func main() {
	if err := execute(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", theme.Fail("error:"), err)
		os.Exit(1)
	}
}
