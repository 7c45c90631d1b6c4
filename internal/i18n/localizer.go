package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/noah-isme/course-eligibility-api/internal/models"
)

var supported = []language.Tag{language.English, language.Indonesian}

var reasonMessages = map[language.Tag]map[models.ReasonCode]string{
	language.English: {
		models.ReasonCompletionNotEnabled: "Completion is not enabled for this course",
		models.ReasonNotYetStarted:        "The course has not yet started",
		models.ReasonNoStudents:           "There are no students enrolled in this course",
		models.ReasonNoSections:           "This course does not use sections",
		models.ReasonNoEndTime:            "The course does not have an end date",
		models.ReasonEndBeforeStart:       "The course end date is before its start date",
		models.ReasonCourseTooLong:        "The course is too long",
		models.ReasonAlreadyFinished:      "The course has just finished and its completion data is not settled yet",
		models.ReasonNotYetFinished:       "The course has not yet finished",
	},
	language.Indonesian: {
		models.ReasonCompletionNotEnabled: "Penyelesaian tidak diaktifkan untuk kursus ini",
		models.ReasonNotYetStarted:        "Kursus belum dimulai",
		models.ReasonNoStudents:           "Tidak ada siswa yang terdaftar di kursus ini",
		models.ReasonNoSections:           "Kursus ini tidak menggunakan bagian",
		models.ReasonNoEndTime:            "Kursus tidak memiliki tanggal selesai",
		models.ReasonEndBeforeStart:       "Tanggal selesai kursus lebih awal dari tanggal mulai",
		models.ReasonCourseTooLong:        "Durasi kursus terlalu panjang",
		models.ReasonAlreadyFinished:      "Kursus baru saja selesai dan data penyelesaiannya belum stabil",
		models.ReasonNotYetFinished:       "Kursus belum selesai",
	},
}

// Localizer renders reason codes into user-facing text.
type Localizer struct {
	catalog  *catalog.Builder
	matcher  language.Matcher
	fallback language.Tag
}

// NewLocalizer builds the reason catalog. An unknown default locale falls back to English.
func NewLocalizer(defaultLocale string) (*Localizer, error) {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, messages := range reasonMessages {
		for code, text := range messages {
			if err := builder.SetString(tag, messageKey(code), text); err != nil {
				return nil, fmt.Errorf("register %s message for %s: %w", tag, code, err)
			}
		}
	}

	l := &Localizer{catalog: builder, matcher: language.NewMatcher(supported), fallback: language.English}
	if tag, ok := l.parse(defaultLocale); ok {
		l.fallback = tag
	}
	return l, nil
}

// Resolve picks the response language from an explicit lang value, then the
// Accept-Language header, then the default locale.
func (l *Localizer) Resolve(lang, acceptLanguage string) language.Tag {
	if tag, ok := l.parse(lang); ok {
		return tag
	}
	if accept := strings.TrimSpace(acceptLanguage); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, idx, confidence := l.matcher.Match(tags...)
			if confidence != language.No {
				return supported[idx]
			}
		}
	}
	return l.fallback
}

// Message returns the localized text for a reason. An empty reason yields an empty string.
func (l *Localizer) Message(tag language.Tag, reason models.ReasonCode) string {
	if reason == "" {
		return ""
	}
	printer := message.NewPrinter(tag, message.Catalog(l.catalog))
	return printer.Sprintf(messageKey(reason))
}

func (l *Localizer) parse(raw string) (language.Tag, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return language.Und, false
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return language.Und, false
	}
	_, idx, confidence := l.matcher.Match(tag)
	if confidence == language.No {
		return language.Und, false
	}
	return supported[idx], true
}

func messageKey(code models.ReasonCode) string {
	return "eligibility.reason." + string(code)
}
