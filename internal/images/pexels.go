package images

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/thinkscotty/minutes/internal/models"
)

type pexelsResponse struct {
	Photos []struct {
		Src struct {
			Large string `json:"large"`
		} `json:"src"`
		Photographer string `json:"photographer"`
		Alt          string `json:"alt"`
	} `json:"photos"`
}

// Pexels searches the Pexels photo API.
type Pexels struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

func NewPexels(client *http.Client, apiKey, baseURL string) *Pexels {
	if baseURL == "" {
		baseURL = "https://api.pexels.com/v1"
	}
	return &Pexels{httpClient: client, apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *Pexels) Name() string     { return "pexels" }
func (p *Pexels) Configured() bool { return p.apiKey != "" }

func (p *Pexels) Search(ctx context.Context, keywords string) (*models.Image, error) {
	q := url.Values{}
	q.Set("query", keywords)
	q.Set("per_page", "1")
	q.Set("orientation", "landscape")

	var data pexelsResponse
	if err := getJSON(ctx, p.httpClient, p.baseURL+"/search?"+q.Encode(), p.apiKey, &data); err != nil {
		return nil, err
	}
	if len(data.Photos) == 0 || data.Photos[0].Src.Large == "" {
		return nil, nil
	}

	ph := data.Photos[0]
	return &models.Image{
		URL:    ph.Src.Large,
		Alt:    firstNonEmpty(ph.Alt, keywords),
		Credit: "Photo by " + ph.Photographer + " on Pexels",
	}, nil
}
