package submissions

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ryanmio/actblue-jail/pkg/repository"
)

const submissionColumns = `id, raw_text, email_subject, email_body, image_key,
	processing_status, public, sender_id, sender_name, ai_confidence,
	created_at, updated_at`

// Filters contains optional filtering criteria for submission queries.
// Nil fields are ignored.
type Filters struct {
	Status     *string `json:"status,omitempty"`
	Public     *bool   `json:"public,omitempty"`
	SenderID   *string `json:"sender_id,omitempty"`
	SenderName *string `json:"sender_name,omitempty"`
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if p := values.Get("public"); p != "" {
		if v, err := strconv.ParseBool(p); err == nil {
			f.Public = &v
		}
	}

	if s := values.Get("sender_id"); s != "" {
		f.SenderID = &s
	}

	if s := values.Get("sender_name"); s != "" {
		f.SenderName = &s
	}

	return f
}

// conditions renders the filters as SQL predicates with positional
// placeholders starting at nextArg.
func (f Filters) conditions(nextArg int) (clauses []string, args []any) {
	add := func(format string, value any) {
		placeholder := "$" + strconv.Itoa(nextArg)
		clauses = append(clauses, strings.ReplaceAll(format, "?", placeholder))
		args = append(args, value)
		nextArg++
	}

	if f.Status != nil {
		add("processing_status = ?", *f.Status)
	}
	if f.Public != nil {
		add("public = ?", *f.Public)
	}
	if f.SenderID != nil {
		add("sender_id = ?", *f.SenderID)
	}
	if f.SenderName != nil {
		add("sender_name ILIKE '%' || ? || '%'", *f.SenderName)
	}

	return clauses, args
}

func scanSubmission(s repository.Scanner) (Submission, error) {
	var sub Submission
	err := s.Scan(
		&sub.ID,
		&sub.RawText,
		&sub.EmailSubject,
		&sub.EmailBody,
		&sub.ImageKey,
		&sub.ProcessingStatus,
		&sub.Public,
		&sub.SenderID,
		&sub.SenderName,
		&sub.AIConfidence,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	return sub, err
}

func scanDeletionRequest(s repository.Scanner) (DeletionRequest, error) {
	var dr DeletionRequest
	err := s.Scan(&dr.ID, &dr.SubmissionID, &dr.Reason, &dr.CreatedAt)
	return dr, err
}
