package session

import (
	"context"
	"encoding/json"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/store"
)

const (
	msgNoLeaders = "No one is on the leaderboard"
	msgUnranked  = "You have not completed a game to be ranked "
)

func (a *actor) init(ctx context.Context, id Identity) error {
	if a.state != nil && a.state.User.ID != "" {
		return nil
	}
	name := id.DisplayName
	if name == "" {
		name = store.DefaultDisplayName
	}
	if err := a.reg.cfg.Stats.EnsureUser(ctx, store.User{ID: id.UserID, Email: id.Email, DisplayName: name}); err != nil {
		return err
	}
	// The row may predate this session state; its profile wins.
	u, err := a.reg.cfg.Stats.GetUser(ctx, id.UserID)
	if err != nil {
		return err
	}
	if a.state == nil {
		a.state = &store.State{}
	}
	a.state.User = store.Profile{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, Handle: u.Handle}
	a.dirty = true
	return nil
}

func (a *actor) setDisplayName(ctx context.Context, name string) error {
	if err := a.requireUser(); err != nil {
		return err
	}
	if name == "" {
		name = store.DefaultDisplayName
	}
	if err := a.reg.cfg.Stats.SetDisplayName(ctx, a.userID, name); err != nil {
		return err
	}
	a.state.User.DisplayName = name
	a.dirty = true
	return nil
}

func (a *actor) setHandle(ctx context.Context, handle string) error {
	if err := a.requireUser(); err != nil {
		return err
	}
	var h *string
	if handle != "" {
		h = &handle
	}
	if err := a.reg.cfg.Stats.SetHandle(ctx, a.userID, h); err != nil {
		return err
	}
	a.state.User.Handle = h
	a.dirty = true
	return nil
}

type leaderboardRow struct {
	XLink        *string `json:"xLink"`
	Rank         int     `json:"rank"`
	Username     string  `json:"username"`
	TwitterLink  *string `json:"twitterLink"`
	Wins         int     `json:"wins"`
	TotalGuesses int     `json:"totalGuesses"`
	Losses       int     `json:"losses"`
}

type leaderboardView struct {
	TopTenUsers any `json:"topTenUsers"`
	CurrentUser any `json:"currentUser"`
}

func (a *actor) leaderboard(ctx context.Context) (string, error) {
	if err := a.requireUser(); err != nil {
		return "", err
	}
	lb, err := a.reg.cfg.Stats.Leaderboard(ctx, a.userID)
	if err != nil {
		return "", err
	}

	view := leaderboardView{TopTenUsers: msgNoLeaders, CurrentUser: msgUnranked}
	if len(lb.Top) > 0 {
		rows := make([]leaderboardRow, 0, len(lb.Top))
		for _, st := range lb.Top {
			rows = append(rows, toRow(st))
		}
		view.TopTenUsers = rows
	}
	if lb.Caller != nil {
		view.CurrentUser = toRow(*lb.Caller)
	}
	out, err := json.Marshal(view)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func toRow(st store.Standing) leaderboardRow {
	var link *string
	if st.Handle != nil {
		l := "https://x.com/" + *st.Handle
		link = &l
	}
	return leaderboardRow{
		XLink:        link,
		Rank:         st.Rank,
		Username:     st.DisplayName,
		TwitterLink:  link,
		Wins:         st.Wins,
		TotalGuesses: st.TotalGuesses,
		Losses:       st.Losses,
	}
}
