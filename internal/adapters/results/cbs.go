package results

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/guttman/pickx/internal/domain/model"
)

// defaultCBSURL is the CBS Sports college basketball scoreboard page.
const defaultCBSURL = "https://www.cbssports.com/college-basketball/scoreboard/"

// CBSOption applies a configuration option to the CBS source.
type CBSOption func(*CBSSource)

// WithCBSURL overrides the scoreboard page URL.
func WithCBSURL(url string) CBSOption {
	return func(s *CBSSource) {
		if url != "" {
			s.url = url
		}
	}
}

// WithCBSClient overrides the HTTP client.
func WithCBSClient(c *http.Client) CBSOption {
	return func(s *CBSSource) {
		if c != nil {
			s.client = c
		}
	}
}

// CBSSource scrapes the CBS scoreboard page. The page exposes no stable
// per-game identifier, so every Fetch replaces the previous cycle's result
// set rather than accumulating onto it; the standings engine guards against
// double counting via the snapshot baseline.
type CBSSource struct {
	url    string
	client *http.Client
}

// NewCBSSource constructs a CBS scoreboard scrape source.
func NewCBSSource(opts ...CBSOption) *CBSSource {
	s := &CBSSource{
		url:    defaultCBSURL,
		client: newHTTPClient(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the source.
func (s *CBSSource) Name() string { return "cbs" }

// Fetch downloads the scoreboard page and emits one event per decided game.
func (s *CBSSource) Fetch(ctx context.Context) ([]model.GameEvent, error) {
	body, err := httpGet(ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}
	return parseCBSScoreboard(body), nil
}

// parseCBSScoreboard walks the page for scoreboard cards: a div whose class
// contains "Scoreboard" with two "TeamName" spans and their "Score" spans.
// Cards with missing names, non-numeric scores on both sides, or a tie emit
// nothing; a broken card never aborts the batch.
func parseCBSScoreboard(page []byte) []model.GameEvent {
	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return nil
	}

	var events []model.GameEvent
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "Scoreboard") {
			if e, ok := parseCBSCard(n); ok {
				events = append(events, e)
			}
			return // cards are not nested
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return events
}

// parseCBSCard extracts the two team names and scores from one card.
func parseCBSCard(card *html.Node) (model.GameEvent, bool) {
	var names, scores []string
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "span" {
			switch {
			case hasClass(n, "TeamName"):
				names = append(names, strings.TrimSpace(nodeText(n)))
			case hasClass(n, "Score"):
				scores = append(scores, strings.TrimSpace(nodeText(n)))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(card)

	if len(names) < 2 || len(scores) < 2 {
		return model.GameEvent{}, false
	}
	winner, loser, ok := decideWinner(
		names[0], parseScore(scores[0]), false,
		names[1], parseScore(scores[1]), false,
	)
	if !ok {
		return model.GameEvent{}, false
	}
	return model.GameEvent{Winner: winner, Loser: loser}, true
}

// hasClass reports whether the node's class attribute contains name as a
// whole token or as a prefix token (CBS suffixes generated hashes).
func hasClass(n *html.Node, name string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, cls := range strings.Fields(attr.Val) {
			if cls == name || strings.HasPrefix(cls, name+"-") {
				return true
			}
		}
	}
	return false
}

// nodeText concatenates all text content under n.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
