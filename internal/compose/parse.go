package compose

import (
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// parts is a parsed draft before scoring.
type parts struct {
	subject string
	body    string
	cta     string
}

// parseEnv carries what the fallbacks need to fill their templates.
type parseEnv struct {
	company   string
	sender    string
	templates *Templates
}

// emailParser reads a draft out of model text or reports false so the next
// parser can try.
type emailParser func(text string, env parseEnv) (parts, bool)

// emailParsers ends with templated, which always succeeds.
var emailParsers = []emailParser{
	wholeJSON,
	embeddedJSON,
	textSections,
	wholeText,
	templated,
}

func parseDraft(text string, env parseEnv) parts {
	for _, p := range emailParsers {
		if out, ok := p(text, env); ok {
			return out
		}
	}
	return parts{}
}

func wholeJSON(text string, _ parseEnv) (parts, bool) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(strings.TrimPrefix(text, "```json"), "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return draftJSON(strings.TrimSpace(text))
}

func embeddedJSON(text string, _ parseEnv) (parts, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return parts{}, false
	}
	return draftJSON(text[start : end+1])
}

func draftJSON(raw string) (parts, bool) {
	if !gjson.Valid(raw) {
		return parts{}, false
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return parts{}, false
	}
	out := parts{
		subject: strings.TrimSpace(doc.Get("subject").String()),
		body:    strings.TrimSpace(doc.Get("body").String()),
		cta:     strings.TrimSpace(doc.Get("cta").String()),
	}
	if out.cta == "" {
		out.cta = strings.TrimSpace(doc.Get("call_to_action").String())
	}
	if out.subject == "" && out.body == "" {
		return parts{}, false
	}
	return out, true
}

// textSections reads "Subject:", "Body:" and "CTA" headed blocks.
func textSections(text string, _ parseEnv) (parts, bool) {
	var (
		out       parts
		bodyLines []string
		nonEmpty  []string
		section   string
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		nonEmpty = append(nonEmpty, line)
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "subject") && strings.Contains(line, ":"):
			out.subject = strings.TrimSpace(line[strings.Index(line, ":")+1:])
			section = "subject"
		case strings.Contains(lower, "body") && strings.Contains(line, ":"):
			section = "body"
		case strings.Contains(lower, "cta") || strings.Contains(lower, "call to action"):
			section = "cta"
		case section == "body":
			bodyLines = append(bodyLines, line)
		case section == "cta":
			out.cta = line
		}
	}
	if out.subject == "" && len(bodyLines) == 0 {
		return parts{}, false
	}
	if len(bodyLines) == 0 {
		bodyLines = nonEmpty
	}
	out.body = strings.Join(bodyLines, "\n\n")
	return out, true
}

const (
	minWholeTextLen = 50
	maxSubjectLine  = 80
)

// wholeText treats a plain reply as the email body, promoting a short first
// line to the subject.
func wholeText(text string, env parseEnv) (parts, bool) {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) <= minWholeTextLen {
		return parts{}, false
	}

	lines := strings.Split(trimmed, "\n")
	first := strings.TrimSpace(lines[0])
	out := parts{cta: env.templates.WholeTextCTA}
	if utf8.RuneCountInString(first) < maxSubjectLine && !strings.HasSuffix(first, ".") {
		out.subject = first
		lines = lines[1:]
	} else {
		out.subject = fill(env.templates.WholeTextSubject, map[string]string{"company": env.company})
	}

	var body []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			body = append(body, l)
		}
	}
	out.body = strings.Join(body, "\n\n")
	return out, true
}

func templated(_ string, env parseEnv) (parts, bool) {
	return parts{
		subject: env.templates.TemplateSubject,
		body: strings.Join([]string{
			"Hi there,",
			env.templates.TemplateBodyOpening,
			"Best regards,\n" + env.sender,
		}, "\n\n"),
		cta: env.templates.TemplateCTA,
	}, true
}

// fill replaces {key} placeholders in tmpl.
func fill(tmpl string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
