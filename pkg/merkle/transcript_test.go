package merkle_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/shaikhalfiya/skillpilot/pkg/llm"
	"github.com/shaikhalfiya/skillpilot/pkg/merkle"
)

var _ = Describe("Transcripts", func() {
	var (
		ctx    context.Context
		storer *merkle.MemoryStorer
		turn   llm.ConversationTurn
	)

	BeforeEach(func() {
		ctx = context.Background()
		storer = merkle.NewMemoryStorer()
		turn = llm.ConversationTurn{
			Skill: "golang",
			Model: "test-model",
			Messages: []llm.Message{
				{Role: llm.RoleUser, Content: "What is a goroutine?"},
			},
			Reply: llm.Message{Role: llm.RoleAssistant, Content: "A lightweight thread."},
		}
	})

	It("stores each message and the reply as a chain", func() {
		head, err := merkle.StoreTurn(ctx, storer, turn)
		Expect(err).NotTo(HaveOccurred())
		Expect(head.Model).To(Equal("test-model"))
		Expect(head.Bucket.Skill).To(Equal("golang"))

		Expect(storer.Depth(ctx, head.Hash)).To(Equal(1))
	})

	It("rebuilds the conversation oldest first", func() {
		head, err := merkle.StoreTurn(ctx, storer, turn)
		Expect(err).NotTo(HaveOccurred())

		msgs, err := merkle.Conversation(ctx, storer, head.Hash)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(Equal([]llm.Message{
			{Role: llm.RoleUser, Content: "What is a goroutine?"},
			{Role: llm.RoleAssistant, Content: "A lightweight thread."},
		}))
	})

	It("shares the prefix of a continued conversation", func() {
		first, err := merkle.StoreTurn(ctx, storer, turn)
		Expect(err).NotTo(HaveOccurred())

		turn.Messages = append(turn.Messages, turn.Reply, llm.Message{Role: llm.RoleUser, Content: "And a channel?"})
		turn.Reply = llm.Message{Role: llm.RoleAssistant, Content: "A typed pipe."}

		second, err := merkle.StoreTurn(ctx, storer, turn)
		Expect(err).NotTo(HaveOccurred())

		nodes, err := storer.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(nodes).To(HaveLen(4))

		path, err := storer.Ancestry(ctx, second.Hash)
		Expect(err).NotTo(HaveOccurred())
		Expect(hashes(path)).To(ContainElement(first.Hash))

		stored, err := storer.Get(ctx, first.Hash)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Model).To(Equal("test-model"))
	})

	It("shares the prefix of a continued conversation in SQLite", func() {
		db, err := merkle.NewSQLiteStorer(":memory:")
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		first, err := merkle.StoreTurn(ctx, db, turn)
		Expect(err).NotTo(HaveOccurred())

		turn.Messages = append(turn.Messages, turn.Reply, llm.Message{Role: llm.RoleUser, Content: "And a channel?"})
		turn.Reply = llm.Message{Role: llm.RoleAssistant, Content: "A typed pipe."}
		second, err := merkle.StoreTurn(ctx, db, turn)
		Expect(err).NotTo(HaveOccurred())

		leaves, err := db.Leaves(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(hashes(leaves)).To(Equal([]string{second.Hash}))

		path, err := db.Ancestry(ctx, second.Hash)
		Expect(err).NotTo(HaveOccurred())
		Expect(hashes(path)).To(ContainElement(first.Hash))
	})
})
