// Package normalize turns raw store documents into record values.
//
// Every function here is total: unknown or malformed fields fall back to
// their zero value (kind falls back to Lost) and nothing returns an error.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"tableflip.dev/lostfound/pkg/record"
)

// Raw is an unstructured document as it comes off the wire.
type Raw = map[string]any

// Field names used by posted item documents.
const (
	FieldTitle       = "title"
	FieldItemName    = "itemName"
	FieldType        = "type"
	FieldStatus      = "status"
	FieldFound       = "found"
	FieldCategory    = "category"
	FieldLocation    = "location"
	FieldDescription = "description"
	FieldKeywords    = "keywords"
	FieldTags        = "tags"
	FieldImages      = "images"
	FieldPhotoURLs   = "photoURLs"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
	FieldEventAt     = "eventAt"
	FieldDateLost    = "dateLost"
	FieldDateFound   = "dateFound"
	FieldTimeLost    = "timeLost"
	FieldTimeFound   = "timeFound"
	FieldOwner       = "ownerUid"
	FieldContactName = "contactName"
	FieldEmail       = "email"
	FieldPhone       = "phone"
)

// Field names used by chat message documents.
const (
	FieldText        = "text"
	FieldSenderUID   = "senderUid"
	FieldSenderName  = "senderName"
	FieldSenderPhoto = "senderPhoto"
	FieldTimestamp   = "timestamp"
)

// AnonymousSender is shown for messages that carry no sender name.
const AnonymousSender = "Anonymous"

// Item maps a raw item document to a Record.
func Item(id string, raw Raw) record.Record {
	return record.Record{
		ID:          id,
		Title:       firstString(raw, FieldTitle, FieldItemName),
		Kind:        Kind(raw),
		Category:    stringField(raw, FieldCategory),
		Location:    stringField(raw, FieldLocation),
		Description: stringField(raw, FieldDescription),
		Keywords:    firstStrings(raw, FieldKeywords, FieldTags),
		Images:      firstStrings(raw, FieldImages, FieldPhotoURLs),
		CreatedAt:   Instant(raw[FieldCreatedAt]),
		UpdatedAt:   Instant(raw[FieldUpdatedAt]),
		EventAt:     eventAt(raw),
		OwnerRef:    stringField(raw, FieldOwner),
		Contact: record.Contact{
			Name:  stringField(raw, FieldContactName),
			Email: stringField(raw, FieldEmail),
			Phone: stringField(raw, FieldPhone),
		},
	}
}

// Kind resolves lost/found. A boolean flag wins over any text, then a text
// type, then a text status. Everything else is Lost.
func Kind(raw Raw) record.Kind {
	for _, key := range []string{FieldType, FieldFound} {
		if b, ok := boolLike(raw[key]); ok {
			if b {
				return record.Found
			}
			return record.Lost
		}
	}
	for _, key := range []string{FieldType, FieldStatus} {
		if s, ok := raw[key].(string); ok {
			return record.ParseKind(s)
		}
	}
	return record.Lost
}

// Message maps a raw chat document to a Message.
func Message(id string, raw Raw) record.Message {
	name := strings.TrimSpace(stringField(raw, FieldSenderName))
	if name == "" {
		name = AnonymousSender
	}
	return record.Message{
		ID:                id,
		Text:              stringField(raw, FieldText),
		SenderRef:         stringField(raw, FieldSenderUID),
		SenderDisplayName: name,
		SenderAvatarURL:   stringField(raw, FieldSenderPhoto),
		SentAt:            Instant(raw[FieldTimestamp]),
	}
}

func eventAt(raw Raw) time.Time {
	if t := Instant(raw[FieldEventAt]); !t.IsZero() {
		return t
	}
	pairs := [][2]string{{FieldDateLost, FieldTimeLost}, {FieldDateFound, FieldTimeFound}}
	for _, p := range pairs {
		day := Instant(raw[p[0]])
		if day.IsZero() {
			continue
		}
		if clock, ok := clockOffset(stringField(raw, p[1])); ok && isMidnight(day) {
			day = day.Add(clock)
		}
		return day
	}
	return time.Time{}
}

// Instant reads an instant from any of the shapes stores hand back: a
// time.Time, RFC 3339 or date-only text, unix seconds, or a
// {seconds, nanoseconds} map. Anything else is the zero time.
func Instant(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t == nil {
			return time.Time{}
		}
		return *t
	case string:
		return parseTimeText(t)
	case float64:
		return fromUnix(t)
	case int64:
		return time.Unix(t, 0)
	case int:
		return time.Unix(int64(t), 0)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}
		}
		return fromUnix(f)
	case map[string]any:
		secs, ok := number(t["seconds"])
		if !ok {
			secs, ok = number(t["_seconds"])
		}
		if !ok {
			return time.Time{}
		}
		nanos, _ := number(t["nanoseconds"])
		if nanos == 0 {
			nanos, _ = number(t["_nanoseconds"])
		}
		return time.Unix(int64(secs), int64(nanos))
	}
	return time.Time{}
}

var textLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

func parseTimeText(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range textLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

func fromUnix(f float64) time.Time {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9))
}

func clockOffset(s string) (time.Duration, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, true
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

func boolLike(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func stringField(raw Raw, key string) string {
	s, _ := raw[key].(string)
	return s
}

func firstString(raw Raw, keys ...string) string {
	for _, key := range keys {
		if s := stringField(raw, key); s != "" {
			return s
		}
	}
	return ""
}

func firstStrings(raw Raw, keys ...string) []string {
	for _, key := range keys {
		if list := stringList(raw[key]); len(list) > 0 {
			return list
		}
	}
	return []string{}
}

// stringList keeps only the string elements of a list, in order.
func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		out := make([]string, 0, len(list))
		for _, s := range list {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
