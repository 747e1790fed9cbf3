package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shuuji3/tweepy-mastodon/internal/theme"
	"github.com/shuuji3/tweepy-mastodon/internal/util"
	"github.com/shuuji3/tweepy-mastodon/tweepy"
)

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func (a *app) printUser(u *tweepy.User) error {
	if a.asJSON {
		return a.printJSON(u)
	}
	fmt.Fprintf(a.out, "%s %s (id %s)\n", theme.Handle("@"+u.ScreenName), u.Name, u.IDStr)
	if desc := util.HTMLToText(u.Description); desc != "" {
		fmt.Fprintln(a.out, desc)
	}
	fmt.Fprintf(a.out, "%s following · %s followers · %s posts\n",
		theme.Info(u.FriendsCount), theme.Info(u.FollowersCount), theme.Info(u.StatusesCount))
	if u.Protected {
		fmt.Fprintln(a.out, theme.Warn("locked"))
	}
	return nil
}

func (a *app) printUsers(us []*tweepy.User) error {
	if a.asJSON {
		return a.printJSON(us)
	}
	for _, u := range us {
		fmt.Fprintf(a.out, "%s %s\n", theme.Handle("@"+u.ScreenName), util.OneLine(u.Name))
	}
	return nil
}

func (a *app) printStatus(s *tweepy.Status) error {
	if a.asJSON {
		return a.printJSON(s)
	}
	a.statusLine(s)
	return nil
}

func (a *app) printStatuses(ss []*tweepy.Status) error {
	if a.asJSON {
		return a.printJSON(ss)
	}
	for _, s := range ss {
		a.statusLine(s)
	}
	return nil
}

func (a *app) statusLine(s *tweepy.Status) {
	author := "?"
	if s.User != nil {
		author = s.User.ScreenName
	}
	head := fmt.Sprintf("%s %s %s", theme.Faint(s.IDStr), theme.Handle("@"+author), theme.Faint(s.CreatedAt.Format("2006-01-02 15:04")))
	body := util.HTMLToText(s.Text)
	var tags []string
	if s.RetweetedStatus != nil {
		orig := "?"
		if s.RetweetedStatus.User != nil {
			orig = s.RetweetedStatus.User.ScreenName
		}
		tags = append(tags, theme.Info("boosted @"+orig))
		body = util.HTMLToText(s.RetweetedStatus.Text)
	}
	if s.InReplyToScreenName != nil {
		tags = append(tags, theme.Info("reply to @"+*s.InReplyToScreenName))
	}
	if s.Favorited {
		tags = append(tags, theme.Warn("★"))
	}
	if len(tags) > 0 {
		head += " " + strings.Join(tags, " ")
	}
	fmt.Fprintln(a.out, head)
	fmt.Fprintln(a.out, "  "+util.Truncate(util.OneLine(body), 200))
}
