package models

import "time"

type User struct {
	ID             string    `bson:"_id"`
	Username       string    `bson:"username"`
	HashedPassword string    `bson:"hashed_password"`
	CreatedAt      time.Time `bson:"created_at"`
}

// Message is append-only: one record per side of a turn, IsUser
// disambiguating the question from the answer.
type Message struct {
	ID        string    `bson:"_id" json:"id"`
	Sender    string    `bson:"sender" json:"sender"`
	Text      string    `bson:"text" json:"text"`
	IsUser    bool      `bson:"is_user" json:"is_user"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	Likes     int       `bson:"likes" json:"likes"`
	Dislikes  int       `bson:"dislikes" json:"dislikes"`
	Rating    *int      `bson:"rating,omitempty" json:"rating,omitempty"`
	Alert     bool      `bson:"alert" json:"alert"`
}

// KnowledgeDocument is read-only in the request path; provisioned by the
// ingestion side and looked up by its unique title.
type KnowledgeDocument struct {
	ID        string `bson:"_id" json:"id"`
	Title     string `bson:"title" json:"title"`
	Content   string `bson:"content" json:"content"`
	SourceRef string `bson:"source_ref" json:"source_ref"`
}

// ExchangeRecord is the audit row written after each orchestrated request.
type ExchangeRecord struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	MatchedTitle string    `json:"matched_title"`
	Score        float64   `json:"score"`
	Fallback     bool      `json:"fallback"`
	Persisted    bool      `json:"persisted"`
	LatencyMS    int       `json:"latency_ms"`
	CreatedAt    time.Time `json:"created_at"`
}
