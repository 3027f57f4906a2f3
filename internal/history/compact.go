package history

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/agentdesk/agentdesk/internal/domain"
)

// SummaryMessageID is the sentinel id of the synthetic summary message,
// distinct from any real message id.
const SummaryMessageID = "context-summary"

const lastResponseExcerptLimit = 200

// CompactionConfig bounds how much history is carried into a request.
// KeepRecent must not exceed MaxMessages.
type CompactionConfig struct {
	MaxMessages      int
	MaxTokenEstimate int
	KeepRecent       int
}

// DefaultConfig returns the standard compaction thresholds.
func DefaultConfig() CompactionConfig {
	return CompactionConfig{
		MaxMessages:      20,
		MaxTokenEstimate: 4000,
		KeepRecent:       5,
	}
}

var (
	orderIDPattern   = regexp.MustCompile(`ORD-\d+`)
	invoiceIDPattern = regexp.MustCompile(`INV-\d+`)
)

// EstimateTokens approximates the provider token count of text. It is a
// fixed chars/4 heuristic, not a tokenizer; the only requirements are
// determinism and monotonicity in input length.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// ShouldCompact reports whether history exceeds the configured message or
// token budget. Compact applies the same checks itself; this predicate
// exists for diagnostics.
func ShouldCompact(messages []domain.Message, config CompactionConfig) bool {
	if len(messages) > config.MaxMessages {
		return true
	}

	return totalTokens(messages) > config.MaxTokenEstimate
}

// Compact bounds history to the configured budget. When over budget, the
// oldest messages are replaced by a single synthetic system summary and the
// most recent KeepRecent messages are kept verbatim. Identical input always
// yields identical output text.
func Compact(messages []domain.Message, config CompactionConfig) []domain.Message {
	if len(messages) <= config.KeepRecent {
		return messages
	}

	if len(messages) <= config.MaxMessages && totalTokens(messages) <= config.MaxTokenEstimate {
		return messages
	}

	older := messages[:len(messages)-config.KeepRecent]
	recent := messages[len(messages)-config.KeepRecent:]

	if len(older) == 0 {
		return recent
	}

	summaryMessage := domain.Message{
		ID:             SummaryMessageID,
		ConversationID: messages[0].ConversationID,
		Role:           domain.RoleSystem,
		Content:        createSummary(older),
		CreatedAt:      time.Now(),
	}

	result := make([]domain.Message, 0, len(recent)+1)
	result = append(result, summaryMessage)
	result = append(result, recent...)

	return result
}

// createSummary renders the compacted-away portion as a fixed-format block:
// topic keywords, referenced order/invoice ids, and an excerpt of the last
// assistant response.
func createSummary(messages []domain.Message) string {
	var userCount int
	var lastAssistant *domain.Message

	topicSet := make(map[string]bool)
	var orderIDs, invoiceIDs []string
	seenOrderIDs := make(map[string]bool)
	seenInvoiceIDs := make(map[string]bool)

	for i := range messages {
		msg := &messages[i]

		switch msg.Role {
		case domain.RoleUser:
			userCount++
		case domain.RoleAssistant:
			lastAssistant = msg
		}

		for _, id := range orderIDPattern.FindAllString(msg.Content, -1) {
			if !seenOrderIDs[id] {
				seenOrderIDs[id] = true
				orderIDs = append(orderIDs, id)
			}
		}

		for _, id := range invoiceIDPattern.FindAllString(msg.Content, -1) {
			if !seenInvoiceIDs[id] {
				seenInvoiceIDs[id] = true
				invoiceIDs = append(invoiceIDs, id)
			}
		}

		lower := strings.ToLower(msg.Content)
		if strings.Contains(lower, "order") {
			topicSet["orders"] = true
		}
		if strings.Contains(lower, "invoice") || strings.Contains(lower, "billing") {
			topicSet["billing"] = true
		}
		if strings.Contains(lower, "refund") {
			topicSet["refunds"] = true
		}
		if strings.Contains(lower, "password") || strings.Contains(lower, "account") {
			topicSet["account"] = true
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[CONVERSATION CONTEXT - %d previous exchanges]\n", userCount)

	// Fixed rendering order keeps the summary byte-identical across runs.
	var topics []string
	for _, topic := range []string{"orders", "billing", "refunds", "account"} {
		if topicSet[topic] {
			topics = append(topics, topic)
		}
	}

	if len(topics) > 0 {
		fmt.Fprintf(&b, "Topics discussed: %s\n", strings.Join(topics, ", "))
	}

	if len(orderIDs) > 0 {
		fmt.Fprintf(&b, "Orders referenced: %s\n", strings.Join(orderIDs, ", "))
	}

	if len(invoiceIDs) > 0 {
		fmt.Fprintf(&b, "Invoices referenced: %s\n", strings.Join(invoiceIDs, ", "))
	}

	if lastAssistant != nil {
		excerpt := lastAssistant.Content
		ellipsis := ""
		if len(excerpt) > lastResponseExcerptLimit {
			excerpt = excerpt[:lastResponseExcerptLimit]
			ellipsis = "..."
		}
		fmt.Fprintf(&b, "Last response summary: %s%s", excerpt, ellipsis)
	}

	return b.String()
}

func totalTokens(messages []domain.Message) int {
	var sum int
	for _, msg := range messages {
		sum += EstimateTokens(msg.Content)
	}
	return sum
}
