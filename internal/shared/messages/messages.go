package messages

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type MessageText struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Format fills the body placeholders with args.
func (m MessageText) Format(args ...any) MessageText {
	return MessageText{Title: m.Title, Body: fmt.Sprintf(m.Body, args...)}
}

type Messages struct {
	GoalPendingApproval MessageText `json:"goal_pending_approval"`
	GoalApproved        MessageText `json:"goal_approved"`
	GoalCompleted       MessageText `json:"goal_completed"`
	FundsReleased       MessageText `json:"funds_released"`
	MedalAwarded        MessageText `json:"medal_awarded"`
	PrizeGranted        MessageText `json:"prize_granted"`
}

// Default returns the built-in pt-BR texts.
func Default() *Messages {
	return &Messages{
		GoalPendingApproval: MessageText{Title: "Nova meta para aprovar", Body: "%s criou a meta \"%s\"."},
		GoalApproved:        MessageText{Title: "Meta aprovada", Body: "Sua meta \"%s\" foi aprovada."},
		GoalCompleted:       MessageText{Title: "Meta concluída", Body: "A meta \"%s\" chegou a %s."},
		FundsReleased:       MessageText{Title: "Dinheiro liberado", Body: "%s da meta \"%s\" foram liberados para você."},
		MedalAwarded:        MessageText{Title: "Nova medalha", Body: "Você ganhou a medalha \"%s\"!"},
		PrizeGranted:        MessageText{Title: "Prêmio recebido", Body: "Você recebeu %s pela medalha \"%s\"."},
	}
}

var (
	loaded   *Messages
	loadOnce sync.Once
	loadErr  error
)

// Load reads the notifications JSON file over the defaults and caches the
// result. An empty path yields the defaults. Safe to call from multiple
// goroutines.
func Load(path string) (*Messages, error) {
	loadOnce.Do(func() {
		loaded, loadErr = read(path)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return loaded, nil
}

func read(path string) (*Messages, error) {
	msgs := Default()
	if path == "" {
		return msgs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file: %w", err)
	}
	if err := json.Unmarshal(data, msgs); err != nil {
		return nil, fmt.Errorf("failed to parse messages file: %w", err)
	}
	return msgs, nil
}
