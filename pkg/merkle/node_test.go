package merkle_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/shaikhalfiya/skillpilot/pkg/merkle"
)

func userBucket(content string) merkle.Bucket {
	return merkle.Bucket{Type: merkle.BucketTypeMessage, Role: "user", Content: content, Skill: "golang"}
}

var _ = Describe("Node", func() {
	Describe("NewNode", func() {
		Context("when creating a root node (no parent)", func() {
			It("creates a node with the given bucket", func() {
				node := merkle.NewNode(userBucket("hello world"), nil)

				Expect(node.Bucket.Content).To(Equal("hello world"))
				Expect(node.Bucket.Role).To(Equal("user"))
			})

			It("sets ParentHash to nil for root nodes", func() {
				node := merkle.NewNode(userBucket("test"), nil)

				Expect(node.ParentHash).To(BeNil())
				Expect(node.IsRoot()).To(BeTrue())
			})

			It("computes a hex encoded sha256 hash", func() {
				node := merkle.NewNode(userBucket("test"), nil)

				Expect(node.Hash).To(MatchRegexp(`^[0-9a-f]{64}$`))
			})

			It("produces consistent hashes for the same bucket", func() {
				node1 := merkle.NewNode(userBucket("same content"), nil)
				node2 := merkle.NewNode(userBucket("same content"), nil)

				Expect(node1.Hash).To(Equal(node2.Hash))
			})

			It("produces different hashes for different content", func() {
				node1 := merkle.NewNode(userBucket("content A"), nil)
				node2 := merkle.NewNode(userBucket("content B"), nil)

				Expect(node1.Hash).NotTo(Equal(node2.Hash))
			})

			It("includes the role in the hash", func() {
				b := userBucket("same")
				node1 := merkle.NewNode(b, nil)
				b.Role = "assistant"
				node2 := merkle.NewNode(b, nil)

				Expect(node1.Hash).NotTo(Equal(node2.Hash))
			})
		})

		Context("when creating a child node (with parent)", func() {
			var parent *merkle.Node

			BeforeEach(func() {
				parent = merkle.NewNode(userBucket("parent content"), nil)
			})

			It("links the child to the parent via ParentHash", func() {
				child := merkle.NewNode(userBucket("child content"), parent)

				Expect(child.ParentHash).NotTo(BeNil())
				Expect(*child.ParentHash).To(Equal(parent.Hash))
				Expect(child.IsRoot()).To(BeFalse())
			})

			It("produces a different hash than the same bucket at the root", func() {
				root := merkle.NewNode(userBucket("child content"), nil)
				child := merkle.NewNode(userBucket("child content"), parent)

				Expect(child.Hash).NotTo(Equal(root.Hash))
			})

			It("produces different hashes under different parents", func() {
				other := merkle.NewNode(userBucket("other parent"), nil)
				child1 := merkle.NewNode(userBucket("child"), parent)
				child2 := merkle.NewNode(userBucket("child"), other)

				Expect(child1.Hash).NotTo(Equal(child2.Hash))
			})
		})
	})
})
