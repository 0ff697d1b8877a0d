package deposit

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/palpa-deposit/internal/fault"
)

var _ = Describe("extractCSRFToken", func() {
	var (
		page  string
		token string
		err   error
	)

	JustBeforeEach(func() {
		token, err = extractCSRFToken(strings.NewReader(page))
	})

	When("the body carries the token", func() {
		BeforeEach(func() {
			page = `<!DOCTYPE html><html><head><meta name="csrf" content="decoy"></head>` +
				`<body class="essi" data-essi-csrf-token="abc123"><div data-essi-csrf-token="nested"></div></body></html>`
		})

		It("should return the body attribute", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("abc123"))
		})
	})

	When("the attribute name is upper case in the markup", func() {
		BeforeEach(func() {
			page = `<html><BODY DATA-ESSI-CSRF-TOKEN="xyz"></BODY></html>`
		})

		It("should still find it", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("xyz"))
		})
	})

	When("only a nested element carries the token", func() {
		BeforeEach(func() {
			page = `<html><body><div data-essi-csrf-token="nested"></div></body></html>`
		})

		It("should return a protocol error", func() {
			Expect(errors.Is(err, fault.ServiceProtocol)).To(BeTrue())
		})
	})

	When("the token is empty", func() {
		BeforeEach(func() {
			page = `<html><body data-essi-csrf-token=""></body></html>`
		})

		It("should return a protocol error", func() {
			Expect(errors.Is(err, fault.ServiceProtocol)).To(BeTrue())
		})
	})

	When("the page is not HTML", func() {
		BeforeEach(func() {
			page = `{"error": "maintenance"}`
		})

		It("should return a protocol error", func() {
			Expect(errors.Is(err, fault.ServiceProtocol)).To(BeTrue())
			Expect(token).To(BeEmpty())
		})
	})
})
