package filter

import (
	"regexp"
	"strings"

	"github.com/authsock/proxy/internal/identity"
	"github.com/gobwas/glob"
)

// CommentMatcher matches an identity's comment string. Pattern syntax:
//
//	~<regex>   a regular expression
//	*glob*     a glob pattern, if the pattern contains '*' or '?'
//	exact      an exact string match otherwise
type CommentMatcher struct {
	pattern string
	exact   string
	glob    glob.Glob
	regex   *regexp.Regexp
}

// NewCommentMatcher compiles pattern into the matcher kind its syntax selects.
func NewCommentMatcher(pattern string) (*CommentMatcher, error) {
	m := &CommentMatcher{pattern: pattern}

	if rest, ok := strings.CutPrefix(pattern, "~"); ok {
		re, err := regexp.Compile(rest)
		if err != nil {
			return nil, &matcherKindError{kind: "comment regex", pattern: rest, cause: err}
		}
		m.regex = re
		return m, nil
	}

	if strings.ContainsAny(pattern, "*?") {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, &matcherKindError{kind: "comment glob", pattern: pattern, cause: err}
		}
		m.glob = g
		return m, nil
	}

	m.exact = pattern
	return m, nil
}

func (m *CommentMatcher) Pattern() string { return m.pattern }

func (m *CommentMatcher) Matches(id identity.Identity) bool {
	switch {
	case m.regex != nil:
		return m.regex.MatchString(id.Comment)
	case m.glob != nil:
		return m.glob.Match(id.Comment)
	default:
		return id.Comment == m.exact
	}
}

func (m *CommentMatcher) Description() string {
	return "comment:" + m.pattern
}

func (*CommentMatcher) isMatcher() {}
