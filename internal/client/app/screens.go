package app

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/schemeseva/internal/client/api"
	"github.com/atinyakov/schemeseva/internal/models"
)

const dashboardHelp = "Pick a category number, a all schemes, s search, c chat, v video, o sign out, q quit."

// dashboard shows the category tiles and dispatches the next screen.
func (a *App) dashboard(ctx context.Context) error {
	tiles, err := a.api.Categories(ctx)
	if err != nil {
		a.log.Warn("failed to load categories", zap.Error(err))
		a.errorf("%s", msgLoadFailed)
	} else {
		a.println(a.render.Title("Welcome, " + a.session.Phone()))
		a.println(a.render.Tiles(tiles))
	}
	a.println(dashboardHelp)

	answer, err := a.prompt.Ask("> ")
	if err != nil {
		return err
	}
	cmd, arg, _ := strings.Cut(answer, " ")
	switch strings.ToLower(cmd) {
	case "", "r", "b":
		return nil
	case "a":
		return a.category(ctx, "", "All Schemes")
	case "s":
		return a.search(ctx, strings.TrimSpace(arg))
	case "c":
		return a.chat(ctx)
	case "v":
		return a.video(ctx)
	case "o":
		return a.signOut(ctx)
	case "q":
		return errQuit
	}
	if i, ok := parseIndex(cmd, len(tiles)); ok {
		return a.category(ctx, tiles[i].Key, tiles[i].Label)
	}
	a.println("Unknown command.")
	return nil
}

// category lists the schemes of one category and filters the cached list
// locally. An empty key lists every scheme.
func (a *App) category(ctx context.Context, key, label string) error {
	for {
		schemes, err := a.api.Schemes(ctx, key, "")
		if err != nil {
			a.log.Warn("failed to load schemes", zap.String("category", key), zap.Error(err))
			a.errorf("%s", msgLoadFailed)
			answer, err := a.prompt.Ask("> ")
			if err != nil {
				return err
			}
			if strings.EqualFold(answer, "r") {
				continue
			}
			return nil
		}
		return a.browse(ctx, label, schemes)
	}
}

// search runs a server-side search across every scheme.
func (a *App) search(ctx context.Context, query string) error {
	if query == "" {
		var err error
		if query, err = a.prompt.Ask("Search: "); err != nil {
			return err
		}
	}
	schemes, err := a.api.Schemes(ctx, "", query)
	if err != nil {
		a.log.Warn("search failed", zap.Error(err))
		schemes = nil
	}
	return a.browse(ctx, "Results for \""+query+"\"", schemes)
}

func (a *App) browse(ctx context.Context, title string, all []models.Scheme) error {
	shown := all
	for {
		a.println(a.render.Title(title))
		a.println(a.render.SchemeList(shown))
		answer, err := a.prompt.Ask("Number to open, /text to filter, b to go back: ")
		if err != nil {
			return err
		}
		switch {
		case answer == "" || strings.EqualFold(answer, "b"):
			return nil
		case strings.HasPrefix(answer, "/"):
			shown = filter(all, strings.TrimPrefix(answer, "/"))
			continue
		}
		if i, ok := parseIndex(answer, len(shown)); ok {
			if err := a.detail(ctx, shown[i].ID); err != nil {
				return err
			}
			continue
		}
		a.println("Unknown command.")
	}
}

func filter(schemes []models.Scheme, query string) []models.Scheme {
	out := make([]models.Scheme, 0, len(schemes))
	for _, sc := range schemes {
		if sc.Matches(query) {
			out = append(out, sc)
		}
	}
	return out
}

// detail shows one scheme. Lookup failures render the not-found state.
func (a *App) detail(ctx context.Context, id string) error {
	sc, err := a.api.Scheme(ctx, id)
	if err != nil {
		if !errors.Is(err, api.ErrNotFound) {
			a.log.Warn("failed to load scheme", zap.String("id", id), zap.Error(err))
		}
		sc = nil
	}
	a.println(a.render.Detail(sc))
	_, err = a.prompt.Ask("Press Enter to go back.")
	return err
}

// chat relays one question at a time until a blank line.
func (a *App) chat(ctx context.Context) error {
	a.println(a.render.Title("Ask about schemes"))
	for {
		question, err := a.prompt.Ask("You: ")
		if err != nil {
			return err
		}
		if question == "" {
			return nil
		}
		reply, err := a.api.Chat(ctx, question)
		if err != nil {
			a.log.Warn("chat failed", zap.Error(err))
			a.println(msgChatFailed)
			continue
		}
		a.println(a.render.Markdown(reply))
	}
}

// video finds the explainer video for a question.
func (a *App) video(ctx context.Context) error {
	question, err := a.prompt.Ask("Which scheme do you want a video for? ")
	if err != nil || question == "" {
		return err
	}
	v, err := a.api.FindVideo(ctx, question)
	switch {
	case errors.Is(err, api.ErrNotFound):
		a.println("No video found for that question.")
	case err != nil:
		a.log.Warn("video lookup failed", zap.Error(err))
		a.println("No video found for that question.")
	case v.VideoURL == "":
		a.println(v.Scheme.Title + " has no video yet.")
	default:
		a.println(v.Scheme.Title)
		a.println(v.VideoURL)
	}
	return nil
}
