// Package importer turns address-book exports into contact rows.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-vcard"

	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/pkg/logger"
)

// Result summarizes one import
type Result struct {
	Contacts []model.Contact
	Read     int
	Skipped  int
}

// birthday layouts accepted in BDAY, in the order tried
var (
	layoutsWithYear = []string{"2006-01-02", "20060102", time.RFC3339, "2006-01-02T15:04:05Z"}
	layoutsNoYear   = []string{"--01-02", "--0102"}
)

// ImportVCard decodes every card of r into contacts owned by userID.
// Cards that fail to parse or carry no usable phone number are skipped;
// an unreadable birthday only drops the birthday. A failure of r itself
// ends the import with an error.
func ImportVCard(ctx context.Context, r io.Reader, userID string, log *logger.Logger) (*Result, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	src := &sourceReader{r: r}
	decoder := vcard.NewDecoder(src)
	result := &Result{}
	seen := make(map[string]bool)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if src.err != nil {
			return nil, fmt.Errorf("failed to read contacts: %w", src.err)
		}
		if err != nil {
			log.Warn("Skipping malformed vCard", "error", err)
			result.Skipped++
			continue
		}
		result.Read++

		phone := normalizePhone(card.PreferredValue(vcard.FieldTelephone))
		if phone == "" || seen[phone] {
			result.Skipped++
			continue
		}
		seen[phone] = true

		contact := model.Contact{
			UserID:      userID,
			Name:        cardName(card),
			PhoneNumber: phone,
			Status:      model.ContactStatusActive,
		}
		if bday := card.Value(vcard.FieldBirthday); bday != "" {
			normalized, ok := normalizeBirthday(bday)
			if ok {
				contact.Birthday = normalized
			} else {
				log.Debug("Ignoring unreadable birthday", "value", bday, "phone", phone)
			}
		}

		result.Contacts = append(result.Contacts, contact)
	}

	return result, nil
}

// cardName prefers FN and falls back to the structured N field
func cardName(card vcard.Card) string {
	if fn := strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName)); fn != "" {
		return fn
	}
	if n := card.Name(); n != nil {
		parts := make([]string, 0, 3)
		for _, p := range []string{n.GivenName, n.AdditionalName, n.FamilyName} {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// normalizePhone keeps digits and a leading plus sign
func normalizePhone(raw string) string {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "tel:")
	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	phone := b.String()
	if strings.Trim(phone, "+") == "" {
		return ""
	}
	return phone
}

// normalizeBirthday rewrites BDAY into YYYY-MM-DD, using 0000 for an
// unknown year.
func normalizeBirthday(value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range layoutsWithYear {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	for _, layout := range layoutsNoYear {
		if t, err := time.Parse(layout, value); err == nil {
			return fmt.Sprintf("0000-%02d-%02d", int(t.Month()), t.Day()), true
		}
	}
	return "", false
}

// sourceReader remembers the first non-EOF error of the underlying reader.
// The decoder reports syntax and read failures alike; read failures repeat
// on every call and must not be skipped.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && s.err == nil {
		s.err = err
	}
	return n, err
}
