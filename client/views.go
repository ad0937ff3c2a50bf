package client

import (
	"fmt"
	"strings"

	"github.com/myaicommunity/agenthub/models"
)

// Card rendering limits: how much of a project a grid card shows before
// truncating.
const (
	CardWordLimit     = 20
	CardMaxTools      = 3
	CardMaxCategories = 2
)

// LinkButton is an action rendered only when its URL field is non-empty.
type LinkButton struct {
	Label string
	URL   string
}

// CardView is the render-ready shape of one project in the listing grid.
type CardView struct {
	ID          string
	Title       string
	Author      string
	Description string
	Tags        []string
	Overflow    int
	Rating      int
	ImageURL    string
	HasImage    bool
	Links       []LinkButton
}

// DetailView is the render-ready shape of the single-project page; tools
// and categories are carried untruncated.
type DetailView struct {
	CardView
	Tools      []string
	Categories []string
}

// TruncateWords cuts a string down to at most limit words, appending an
// ellipsis when anything was dropped.
func TruncateWords(s string, limit int) string {
	words := strings.Fields(s)
	if len(words) <= limit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:limit], " ") + "..."
}

func linkButtons(p models.Project) []LinkButton {
	var links []LinkButton
	for _, candidate := range []LinkButton{
		{Label: "Profile", URL: p.LinkedProfile},
		{Label: "Video", URL: p.VideoLink},
		{Label: "Flow File", URL: p.FlowFileLink},
		{Label: "Live Demo", URL: p.DeployedLink},
		{Label: "Instructions", URL: p.InstructionDocumentLink},
	} {
		if candidate.URL != "" {
			links = append(links, candidate)
		}
	}
	return links
}

// BuildCardView assembles the grid-card presentation of a project: word-
// limited description, the first few tools and categories with an overflow
// counter, and a placeholder fallback when no image is available.
func BuildCardView(p models.Project) CardView {
	tools := []string(p.Tools)
	categories := []string(p.Categories)

	var tags []string
	for _, tool := range tools[:min(len(tools), CardMaxTools)] {
		tags = append(tags, tool)
	}
	for _, category := range categories[:min(len(categories), CardMaxCategories)] {
		tags = append(tags, category)
	}
	overflow := len(tools) + len(categories) - len(tags)

	view := CardView{
		ID:          p.ID.String(),
		Title:       p.ProjectName,
		Author:      p.Name,
		Description: TruncateWords(p.ProjectDescription, CardWordLimit),
		Tags:        tags,
		Overflow:    overflow,
		Rating:      p.Rating,
		Links:       linkButtons(p),
	}

	if p.BackgroundImage != nil && p.BackgroundImage.URL != "" {
		view.ImageURL = p.BackgroundImage.URL
		view.HasImage = true
	}
	return view
}

// BuildDetailView assembles the full presentation of a single project.
func BuildDetailView(p models.Project) DetailView {
	view := DetailView{
		CardView:   BuildCardView(p),
		Tools:      []string(p.Tools),
		Categories: []string(p.Categories),
	}
	view.Description = p.ProjectDescription
	return view
}

// OverflowLabel formats the "+N" counter shown after the visible tags.
func OverflowLabel(overflow int) string {
	if overflow <= 0 {
		return ""
	}
	return fmt.Sprintf("+%d", overflow)
}
