package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// tokenPayload is the JSON shape stored for single-token secrets.
type tokenPayload struct {
	Token string `json:"token"`
}

// JSON reads the parameter name and decodes its JSON value into out.
func JSON(ctx context.Context, g Getter, name string, out any) error {
	if g == nil {
		return errors.New("paramstore: getter is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("paramstore: parameter name is empty")
	}
	raw, err := g.GetParameter(ctx, name)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("unmarshal %s value as JSON: %w", name, err)
	}
	return nil
}

// Token reads a {"token": "..."} secret.
func Token(ctx context.Context, g Getter, name string) (string, error) {
	var tp tokenPayload
	if err := JSON(ctx, g, name, &tp); err != nil {
		return "", err
	}
	if tp.Token == "" {
		return "", fmt.Errorf("API token in %s is empty", name)
	}
	return tp.Token, nil
}
