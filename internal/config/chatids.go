package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseChatIDs parses a comma separated recipient list into an ordered,
// de-duplicated id slice.
//
// Rules:
//   - tokens are trimmed; empty tokens are skipped
//   - every remaining token must parse as a non-zero integer
//   - duplicates keep their first position
//   - an empty result is a configuration error
func ParseChatIDs(raw string) ([]int64, error) {
	seen := make(map[int64]struct{})
	var out []int64

	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		id, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("telegram.chat_ids: invalid chat id %q", tok)
		}
		if id == 0 {
			return nil, fmt.Errorf("telegram.chat_ids: chat id must be non-zero")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("telegram.chat_ids: no recipients configured")
	}
	return out, nil
}

// parseAdminChatID parses the optional admin id. Empty input means "no admin
// channel"; anything else must be a single non-zero integer.
func parseAdminChatID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("telegram.admin_chat_id: invalid chat id %q", raw)
	}
	if id == 0 {
		return 0, fmt.Errorf("telegram.admin_chat_id: chat id must be non-zero")
	}
	return id, nil
}
