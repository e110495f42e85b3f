package domain

import "math/rand"

// Interview is the persisted record produced by a successful generation.
type Interview struct {
	ID         string   `json:"id,omitempty"`
	Role       string   `json:"role"`
	Type       string   `json:"type"`
	Level      string   `json:"level"`
	TechStack  []string `json:"techstack"`
	Questions  []string `json:"questions"`
	UserID     string   `json:"userId"`
	Finalized  bool     `json:"finalized"`
	CoverImage string   `json:"coverImage"`
	CreatedAt  string   `json:"createdAt"`
}

var interviewCovers = []string{
	"/adobe.png",
	"/amazon.png",
	"/facebook.png",
	"/hostinger.png",
	"/pinterest.png",
	"/quora.png",
	"/reddit.png",
	"/skype.png",
	"/spotify.png",
	"/telegram.png",
	"/tiktok.png",
	"/yahoo.png",
}

// InterviewCovers returns a copy of the cover catalog.
func InterviewCovers() []string {
	out := make([]string, len(interviewCovers))
	for i, c := range interviewCovers {
		out[i] = "/covers" + c
	}
	return out
}

// RandomInterviewCover picks a cover image reference from the catalog.
func RandomInterviewCover() string {
	return "/covers" + interviewCovers[rand.Intn(len(interviewCovers))]
}
