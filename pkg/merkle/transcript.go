package merkle

import (
	"context"
	"fmt"

	"github.com/shaikhalfiya/skillpilot/pkg/llm"
)

// StoreTurn records a completed tutor exchange. Each request message becomes
// a node chained to the previous one and the reply becomes the head. It
// returns the head node.
func StoreTurn(ctx context.Context, storer Storer, turn llm.ConversationTurn) (*Node, error) {
	var parent *Node

	for _, msg := range turn.Messages {
		node := NewNode(Bucket{
			Type:    BucketTypeMessage,
			Role:    msg.Role,
			Content: msg.Content,
			Skill:   turn.Skill,
		}, parent)

		if err := storer.Put(ctx, node); err != nil {
			return nil, fmt.Errorf("storing message node: %w", err)
		}
		parent = node
	}

	head := NewNode(Bucket{
		Type:    BucketTypeMessage,
		Role:    turn.Reply.Role,
		Content: turn.Reply.Content,
		Skill:   turn.Skill,
	}, parent)
	head.Model = turn.Model

	if err := storer.Put(ctx, head); err != nil {
		return nil, fmt.Errorf("storing reply node: %w", err)
	}

	return head, nil
}

// Conversation returns the messages leading up to and including hash, oldest
// first.
func Conversation(ctx context.Context, storer Storer, hash string) ([]llm.Message, error) {
	path, err := storer.Descendants(ctx, hash)
	if err != nil {
		return nil, err
	}

	msgs := make([]llm.Message, 0, len(path))
	for _, n := range path {
		msgs = append(msgs, llm.Message{Role: n.Bucket.Role, Content: n.Bucket.Content})
	}
	return msgs, nil
}
