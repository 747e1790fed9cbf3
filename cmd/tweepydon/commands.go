package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shuuji3/tweepy-mastodon/internal/analytics"
	"github.com/shuuji3/tweepy-mastodon/internal/config"
	"github.com/shuuji3/tweepy-mastodon/internal/engage"
	"github.com/shuuji3/tweepy-mastodon/internal/jobs"
	"github.com/shuuji3/tweepy-mastodon/internal/metrics"
	"github.com/shuuji3/tweepy-mastodon/internal/theme"
	"github.com/shuuji3/tweepy-mastodon/tweepy"
)

func initCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.cfgPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.cfgPath)
			}
			if err := config.Save(a.cfgPath, defaultsFromEnv()); err != nil {
				return err
			}
			abs, _ := filepath.Abs(a.cfgPath)
			theme.PrintBanner(a.out)
			fmt.Fprintln(a.out, "Config written to:", abs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated account (verify_credentials)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run("whoami", func(ctx context.Context) error {
				api, err := a.client()
				if err != nil {
					return err
				}
				me, err := api.VerifyCredentials(ctx)
				if err != nil {
					return err
				}
				return a.printUser(me)
			})
		},
	}
}

func timelineCmd(a *app) *cobra.Command {
	var (
		user           string
		count          int
		sinceID, maxID int64
		excludeReplies bool
	)
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show the home timeline, or one user's posts with --user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run("timeline", func(ctx context.Context) error {
				api, err := a.client()
				if err != nil {
					return err
				}
				var statuses []*tweepy.Status
				if user == "" {
					statuses, err = api.HomeTimeline(ctx, tweepy.TimelineParams{
						Count: count, SinceID: sinceID, MaxID: maxID, ExcludeReplies: excludeReplies,
					})
				} else {
					statuses, err = api.UserTimeline(ctx, tweepy.UserTimelineParams{
						UserQuery: parseUser(user),
						Count:     count, SinceID: sinceID, MaxID: maxID, ExcludeReplies: excludeReplies,
					})
				}
				if err != nil {
					return err
				}
				return a.printStatuses(statuses)
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "id or handle; empty for the home timeline")
	cmd.Flags().IntVar(&count, "count", 20, "statuses per request")
	cmd.Flags().Int64Var(&sinceID, "since-id", 0, "only statuses newer than this id")
	cmd.Flags().Int64Var(&maxID, "max-id", 0, "only statuses older than this id")
	cmd.Flags().BoolVar(&excludeReplies, "exclude-replies", false, "drop replies")
	return cmd
}

func userCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "user <id|handle>",
		Short: "Show a user (get_user)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run("user", func(ctx context.Context) error {
				api, err := a.client()
				if err != nil {
					return err
				}
				u, err := api.GetUser(ctx, parseUser(args[0]))
				if err != nil {
					return err
				}
				return a.printUser(u)
			})
		},
	}
}

func showCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one status (get_status)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run("show", func(ctx context.Context) error {
				id, err := parseStatusID(args[0])
				if err != nil {
					return err
				}
				api, err := a.client()
				if err != nil {
					return err
				}
				s, err := api.GetStatus(ctx, id, tweepy.StatusParams{})
				if err != nil {
					return err
				}
				return a.printStatus(s)
			})
		},
	}
}

func postCmd(a *app) *cobra.Command {
	var (
		replyTo int64
		media   []string
		alt     string
	)
	cmd := &cobra.Command{
		Use:   "post <text>",
		Short: "Publish a status (update_status), optionally with media",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run("post", func(ctx context.Context) error {
				api, err := a.client()
				if err != nil {
					return err
				}
				text := strings.Join(args, " ")
				var posted *tweepy.Status
				err = a.mutate(ctx, "post", "", func() error {
					p := tweepy.UpdateStatusParams{InReplyToStatusID: replyTo}
					for _, path := range media {
						m, err := api.MediaUpload(ctx, path, nil, tweepy.MediaUploadParams{AltText: alt})
						if err != nil {
							return fmt.Errorf("uploading %s: %w", path, err)
						}
						p.MediaIDs = append(p.MediaIDs, m.MediaID)
					}
					posted, err = api.UpdateStatus(ctx, text, p)
					return err
				})
				if err != nil {
					return err
				}
				return a.printStatus(posted)
			})
		},
	}
	cmd.Flags().Int64Var(&replyTo, "reply-to", 0, "status id to reply to")
	cmd.Flags().StringArrayVar(&media, "media", nil, "file to attach (repeatable)")
	cmd.Flags().StringVar(&alt, "alt", "", "alt text for the attached media")
	return cmd
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your statuses (destroy_status)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run("delete", func(ctx context.Context) error {
				return a.statusAction(ctx, "delete", args[0], func(api *tweepy.API) func(context.Context, int64) (*tweepy.Status, error) {
					return api.DestroyStatus
				})
			})
		},
	}
}

type statusCall func(api *tweepy.API) func(context.Context, int64) (*tweepy.Status, error)

func (a *app) statusAction(ctx context.Context, kind, arg string, call statusCall) error {
	id, err := parseStatusID(arg)
	if err != nil {
		return err
	}
	api, err := a.client()
	if err != nil {
		return err
	}
	var s *tweepy.Status
	err = a.mutate(ctx, kind, arg, func() error {
		s, err = call(api)(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	return a.printStatus(s)
}

func statusActionCmds(a *app) []*cobra.Command {
	actions := []struct {
		use, kind, short string
		call             statusCall
	}{
		{"fav", "favourite", "Favourite a status (create_favorite)", func(api *tweepy.API) func(context.Context, int64) (*tweepy.Status, error) { return api.CreateFavorite }},
		{"unfav", "unfavourite", "Remove a favourite (destroy_favorite)", func(api *tweepy.API) func(context.Context, int64) (*tweepy.Status, error) { return api.DestroyFavorite }},
		{"rt", "reblog", "Boost a status (retweet)", func(api *tweepy.API) func(context.Context, int64) (*tweepy.Status, error) { return api.Retweet }},
		{"unrt", "unreblog", "Undo a boost (unretweet)", func(api *tweepy.API) func(context.Context, int64) (*tweepy.Status, error) { return api.Unretweet }},
	}
	cmds := make([]*cobra.Command, 0, len(actions))
	for _, act := range actions {
		act := act
		cmds = append(cmds, &cobra.Command{
			Use:   act.use + " <id>",
			Short: act.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(act.use, func(ctx context.Context) error {
					return a.statusAction(ctx, act.kind, args[0], act.call)
				})
			},
		})
	}
	return cmds
}

type userCall func(api *tweepy.API) func(context.Context, tweepy.UserQuery) (*tweepy.User, error)

func relationshipCmds(a *app) []*cobra.Command {
	var notify bool
	follow := &cobra.Command{
		Use:   "follow <id|handle>",
		Short: "Follow a user (create_friendship)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run("follow", func(ctx context.Context) error {
				return a.userAction(ctx, "follow", args[0], func(api *tweepy.API) func(context.Context, tweepy.UserQuery) (*tweepy.User, error) {
					return func(ctx context.Context, q tweepy.UserQuery) (*tweepy.User, error) {
						return api.CreateFriendship(ctx, q, tweepy.FriendshipParams{Follow: notify})
					}
				})
			})
		},
	}
	follow.Flags().BoolVar(&notify, "notify", false, "get notified when the user posts")

	actions := []struct {
		use, short string
		call       userCall
	}{
		{"unfollow", "Unfollow a user (destroy_friendship)", func(api *tweepy.API) func(context.Context, tweepy.UserQuery) (*tweepy.User, error) { return api.DestroyFriendship }},
		{"mute", "Mute a user (create_mute)", func(api *tweepy.API) func(context.Context, tweepy.UserQuery) (*tweepy.User, error) { return api.CreateMute }},
		{"unmute", "Unmute a user (destroy_mute)", func(api *tweepy.API) func(context.Context, tweepy.UserQuery) (*tweepy.User, error) { return api.DestroyMute }},
		{"block", "Block a user (create_block)", func(api *tweepy.API) func(context.Context, tweepy.UserQuery) (*tweepy.User, error) { return api.CreateBlock }},
		{"unblock", "Unblock a user (destroy_block)", func(api *tweepy.API) func(context.Context, tweepy.UserQuery) (*tweepy.User, error) { return api.DestroyBlock }},
	}
	cmds := []*cobra.Command{follow}
	for _, act := range actions {
		act := act
		cmds = append(cmds, &cobra.Command{
			Use:   act.use + " <id|handle>",
			Short: act.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(act.use, func(ctx context.Context) error {
					return a.userAction(ctx, act.use, args[0], act.call)
				})
			},
		})
	}
	return cmds
}

func (a *app) userAction(ctx context.Context, kind, arg string, call userCall) error {
	api, err := a.client()
	if err != nil {
		return err
	}
	var u *tweepy.User
	err = a.mutate(ctx, kind, arg, func() error {
		u, err = call(api)(ctx, parseUser(arg))
		return err
	})
	if err != nil {
		return err
	}
	return a.printUser(u)
}

func followersCmd(a *app) *cobra.Command {
	var (
		following bool
		count     int
	)
	cmd := &cobra.Command{
		Use:   "followers [id|handle]",
		Short: "List followers (get_followers), or followed accounts with --following",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run("followers", func(ctx context.Context) error {
				api, err := a.client()
				if err != nil {
					return err
				}
				var q tweepy.UserQuery
				if len(args) == 1 {
					q = parseUser(args[0])
				}
				list := api.GetFollowers
				if following {
					list = api.GetFriends
				}
				users, err := list(ctx, q, tweepy.CursorParams{Count: count})
				if err != nil {
					return err
				}
				return a.printUsers(users)
			})
		},
	}
	cmd.Flags().BoolVar(&following, "following", false, "list accounts the user follows instead")
	cmd.Flags().IntVar(&count, "count", 40, "accounts to list")
	return cmd
}

func followFollowersCmd(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "follow-followers",
		Short: "Follow back every follower, within the engagement budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run("follow_followers", func(ctx context.Context) error {
				api, err := a.client()
				if err != nil {
					return err
				}
				followers, err := api.GetFollowers(ctx, tweepy.UserQuery{}, tweepy.CursorParams{Count: count})
				if err != nil {
					return err
				}
				followed := 0
				for _, f := range followers {
					q := tweepy.UserQuery{UserID: f.ID}
					err := a.mutate(ctx, "follow", f.IDStr, func() error {
						_, err := api.CreateFriendship(ctx, q, tweepy.FriendshipParams{})
						return err
					})
					if errors.Is(err, engage.ErrBudgetExhausted) || errors.Is(err, engage.ErrQuietHours) {
						fmt.Fprintf(a.out, "%s %v\n", theme.Warn("stopped:"), err)
						break
					}
					if err != nil {
						a.logger.Warn("follow failed", "user", f.ScreenName, "err", err)
						continue
					}
					followed++
					fmt.Fprintf(a.out, "%s %s\n", theme.Success("followed"), theme.Handle("@"+f.ScreenName))
				}
				fmt.Fprintf(a.out, "followed %d of %d followers\n", followed, len(followers))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&count, "count", 80, "followers to consider")
	return cmd
}

func syncCmd(a *app) *cobra.Command {
	var (
		pages, perPage int
		interval       time.Duration
		serveMetrics   bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Store the home timeline in the local journal, once or every --interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run("sync", func(ctx context.Context) error {
				api, err := a.client()
				if err != nil {
					return err
				}
				db, err := a.journal()
				if err != nil {
					return err
				}
				if interval <= 0 {
					return jobs.RunSyncOnce(ctx, db, api, perPage, pages)
				}
				if serveMetrics {
					srv := metrics.StartServer(a.cfg.Metrics.Addr)
					defer srv.Close()
				}
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
				err = jobs.RunSyncLoop(ctx, db, api, perPage, pages, interval)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 5, "pages per sync")
	cmd.Flags().IntVar(&perPage, "per-page", 40, "statuses per page")
	cmd.Flags().DurationVar(&interval, "interval", 0, "repeat every interval until interrupted (0 = once)")
	cmd.Flags().BoolVar(&serveMetrics, "metrics", true, "serve /metrics while looping")
	return cmd
}

type hourBucket struct {
	Hour   time.Time      `json:"hour"`
	Counts map[string]int `json:"counts"`
}

func historyCmd(a *app) *cobra.Command {
	var hours int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled actions per hour",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run("history", func(ctx context.Context) error {
				db, err := a.journal()
				if err != nil {
					return err
				}
				now := a.now().UTC()
				actions, err := db.ActionsRange(ctx, now.Add(-time.Duration(hours)*time.Hour), now.Add(time.Second))
				if err != nil {
					return err
				}
				buckets := analytics.HourlyEngagement(actions)
				keys := analytics.SortedBucketKeys(buckets)
				if a.asJSON {
					out := make([]hourBucket, 0, len(keys))
					for _, k := range keys {
						out = append(out, hourBucket{Hour: k, Counts: buckets[k]})
					}
					return a.printJSON(out)
				}
				if len(keys) == 0 {
					fmt.Fprintln(a.out, "no actions in the last", hours, "hours")
					return nil
				}
				for _, k := range keys {
					var parts []string
					for _, kind := range analytics.SortedKinds(buckets[k]) {
						parts = append(parts, fmt.Sprintf("%s=%d", kind, buckets[k][kind]))
					}
					fmt.Fprintf(a.out, "%s  %s\n", theme.Faint(k.Format("2006-01-02 15:04")), strings.Join(parts, " "))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&hours, "hours", 24, "how far back to look")
	return cmd
}

func authCmd(a *app) *cobra.Command {
	var (
		redirectURI string
		save        bool
	)
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Obtain an access token for the configured application",
	}
	auth.PersistentFlags().StringVar(&redirectURI, "redirect-uri", "", "registered redirect URI (default: show the code on screen)")

	url := &cobra.Command{
		Use:   "url",
		Short: "Print the authorization page URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.authHandler()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, h.GetAuthorizationURL(redirectURI))
			return nil
		},
	}
	token := &cobra.Command{
		Use:   "token <code>",
		Short: "Exchange the authorization code for an access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run("auth_token", func(ctx context.Context) error {
				h, err := a.authHandler()
				if err != nil {
					return err
				}
				tok, _, err := h.GetAccessToken(ctx, args[0], redirectURI, nil)
				if err != nil {
					return err
				}
				if save {
					cfg := *a.cfg
					cfg.Credentials.AccessToken = tok
					if err := config.Save(a.cfgPath, cfg); err != nil {
						return err
					}
					fmt.Fprintln(a.out, theme.Success("token saved to"), a.cfgPath)
					return nil
				}
				fmt.Fprintln(a.out, tok)
				return nil
			})
		},
	}
	token.Flags().BoolVar(&save, "save", false, "write the token into the config file")
	auth.AddCommand(url, token)
	return auth
}
