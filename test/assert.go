package test

import (
	"testing"
	"time"

	"github.com/onsi/gomega"
)

type Assertions struct {
	internal *gomega.WithT
}

func NewAssertions(t *testing.T) Assertions {
	return Assertions{internal: gomega.NewWithT(t)}
}

func (a Assertions) Nil(err error, msg ...any) {
	a.internal.Expect(err).To(gomega.BeNil(), msg...)
}

func (a Assertions) NotNil(values ...any) {
	for _, value := range values {
		a.internal.Expect(value).To(gomega.Not(gomega.BeNil()))
	}
}

func (a Assertions) NotEmpty(value string) {
	a.internal.Expect(value).To(gomega.Not(gomega.BeEmpty()))
}

func (a Assertions) True(value bool) {
	a.internal.Expect(value).To(gomega.BeTrue())
}

func (a Assertions) False(value bool) {
	a.internal.Expect(value).To(gomega.BeFalse())
}

func (a Assertions) Equals(value any, expected any) {
	a.internal.Expect(value).To(gomega.Equal(expected))
}

func (a Assertions) NotEqual(value any, expected any) {
	a.internal.Expect(value).NotTo(gomega.Equal(expected))
}

func (a Assertions) Contains(value string, substr string) {
	a.internal.Expect(value).To(gomega.ContainSubstring(substr))
}

func (a Assertions) NotContains(value string, substr string) {
	a.internal.Expect(value).NotTo(gomega.ContainSubstring(substr))
}

func (a Assertions) MatchJson(value string, pattern string) {
	a.internal.Expect(value).To(gomega.MatchJSON(pattern))
}

// Eventually polls condition until it holds or timeout expires.
func (a Assertions) Eventually(condition func() bool, timeout time.Duration) {
	a.internal.Eventually(condition).
		WithTimeout(timeout).
		WithPolling(5 * time.Millisecond).
		Should(gomega.BeTrue())
}

// Consistently fails if condition turns false during the whole window.
func (a Assertions) Consistently(condition func() bool, window time.Duration) {
	a.internal.Consistently(condition).
		WithTimeout(window).
		WithPolling(5 * time.Millisecond).
		Should(gomega.BeTrue())
}
