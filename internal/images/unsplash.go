package images

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/thinkscotty/minutes/internal/models"
)

type unsplashResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
		Description    string `json:"description"`
		AltDescription string `json:"alt_description"`
	} `json:"results"`
}

// Unsplash searches the Unsplash photo API.
type Unsplash struct {
	httpClient *http.Client
	accessKey  string
	baseURL    string
}

func NewUnsplash(client *http.Client, accessKey, baseURL string) *Unsplash {
	if baseURL == "" {
		baseURL = "https://api.unsplash.com"
	}
	return &Unsplash{httpClient: client, accessKey: accessKey, baseURL: strings.TrimRight(baseURL, "/")}
}

func (u *Unsplash) Name() string     { return "unsplash" }
func (u *Unsplash) Configured() bool { return u.accessKey != "" }

func (u *Unsplash) Search(ctx context.Context, keywords string) (*models.Image, error) {
	q := url.Values{}
	q.Set("query", keywords)
	q.Set("per_page", "1")
	q.Set("orientation", "landscape")

	var data unsplashResponse
	if err := getJSON(ctx, u.httpClient, u.baseURL+"/search/photos?"+q.Encode(), "Client-ID "+u.accessKey, &data); err != nil {
		return nil, err
	}
	if len(data.Results) == 0 || data.Results[0].URLs.Regular == "" {
		return nil, nil
	}

	r := data.Results[0]
	return &models.Image{
		URL:    r.URLs.Regular,
		Alt:    firstNonEmpty(r.AltDescription, r.Description, keywords),
		Credit: "Photo by " + r.User.Name + " on Unsplash",
	}, nil
}
