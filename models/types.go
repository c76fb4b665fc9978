package models

import "time"

// Election status constants
const (
	StatusDraft    = "draft"
	StatusLaunched = "launched"
	StatusEnded    = "ended"
)

// Session kinds
const (
	KindAnonymous = "anonymous"
	KindAdmin     = "admin"
	KindVoter     = "voter"
)

// Request types. Field names follow the form fields of the ballot pages.

type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VoterLoginRequest struct {
	VoterID  string `json:"voterId"`
	Password string `json:"password"`
}

// UpdateElectionRequest renames an election, or launches/ends it when Start/End is set.
type UpdateElectionRequest struct {
	Name  *string `json:"name"`
	Start bool    `json:"start"`
	End   bool    `json:"end"`
}

type CreateElectionRequest struct {
	Name string `json:"name"`
}

type QuestionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type OptionRequest struct {
	Title string `json:"title"`
}

type VoterRequest struct {
	VoterID  string `json:"voterId"`
	Password string `json:"password"`
}

// Response types

type CreatedResponse struct {
	ID int64 `json:"id"`
}

type PageResponse struct {
	CSRFToken string `json:"csrf_token"`
}

type DashboardResponse struct {
	Dashboard
	CSRFToken string `json:"csrf_token"`
}

type ElectionDetailResponse struct {
	ElectionDetail
	CSRFToken string `json:"csrf_token"`
}

type BallotResponse struct {
	Ballot
	CSRFToken string `json:"csrf_token"`
}

type CastVoteResponse struct {
	VoteID  string `json:"vote_id"`
	Message string `json:"message"`
}

// Domain types

type Admin struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Election struct {
	ID         int64      `json:"id"`
	OwnerID    int64      `json:"owner_id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	LaunchedAt *time.Time `json:"launched_at,omitempty"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

type Question struct {
	ID          int64  `json:"id"`
	ElectionID  int64  `json:"election_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

type Option struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Title      string `json:"title"`
	Position   int    `json:"position"`
}

type QuestionWithOptions struct {
	Question
	Options []Option `json:"options"`
}

type Voter struct {
	ID         int64     `json:"id"`
	ElectionID int64     `json:"election_id"`
	VoterID    string    `json:"voter_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Vote is immutable once recorded.
type Vote struct {
	ID         string          `json:"id"`
	ElectionID int64           `json:"election_id"`
	VoterID    int64           `json:"voter_id"`
	Answers    map[int64]int64 `json:"answers"` // question_id -> option_id
	CastAt     time.Time       `json:"cast_at"`
	IPHash     string          `json:"-"` // Never expose in JSON
	UserAgent  string          `json:"-"` // Never expose in JSON
}

// Ballot is the public view of a launched election.
type Ballot struct {
	Election  Election              `json:"election"`
	Questions []QuestionWithOptions `json:"questions"`
}

// ElectionDetail is the owner's view of one election.
type ElectionDetail struct {
	Election  Election              `json:"election"`
	Questions []QuestionWithOptions `json:"questions"`
	Voters    []Voter               `json:"voters"`
}

type ElectionSummary struct {
	Election
	QuestionCount int    `json:"question_count"`
	VoterCount    int    `json:"voter_count"`
	VoteCount     int    `json:"vote_count"`
	CreatedAgo    string `json:"created_ago"`
	LaunchedAgo   string `json:"launched_ago,omitempty"`
}

type Dashboard struct {
	Admin     Admin             `json:"admin"`
	Elections []ElectionSummary `json:"elections"`
}

// Result types

type OptionResult struct {
	OptionID int64  `json:"option_id"`
	Title    string `json:"title"`
	Votes    int    `json:"votes"`
}

type QuestionResult struct {
	QuestionID int64          `json:"question_id"`
	Title      string         `json:"title"`
	Options    []OptionResult `json:"options"`
}

type Results struct {
	ElectionID int64            `json:"election_id"`
	Status     string           `json:"status"`
	TotalVotes int              `json:"total_votes"`
	Questions  []QuestionResult `json:"questions"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
