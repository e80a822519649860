package mailservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tp := NewTemplate()

	testCases := []struct {
		name         string
		templateName string
		data         any
		expectedErr  error
		subject      string
		plain        []string
		html         []string
	}{
		{
			name:         "post generated",
			templateName: postGeneratedTemplate,
			data: postGeneratedData{
				Title:           "Ten Lessons",
				PostURL:         "https://quillpress.test/dashboard/posts/1",
				TokensUsed:      1,
				RemainingTokens: 4,
			},
			subject: `Your post "Ten Lessons" is ready`,
			plain:   []string{"Tokens remaining: 4", "https://quillpress.test/dashboard/posts/1"},
			html:    []string{`href="https://quillpress.test/dashboard/posts/1"`, "<strong>Ten Lessons</strong>"},
		},
		{
			name:         "title is escaped only in html",
			templateName: postGeneratedTemplate,
			data: postGeneratedData{
				Title:   "Cats & <Dogs>",
				PostURL: "https://quillpress.test/dashboard/posts/2",
			},
			subject: `Your post "Cats & <Dogs>" is ready`,
			plain:   []string{`"Cats & <Dogs>"`},
			html:    []string{"<strong>Cats &amp; &lt;Dogs&gt;</strong>"},
		},
		{
			name:         "title cannot add header lines",
			templateName: postGeneratedTemplate,
			data:         postGeneratedData{Title: "Line one\r\nBcc: someone@example.com"},
			subject:      `Your post "Line one Bcc: someone@example.com" is ready`,
		},
		{
			name:         "unknown template",
			templateName: "invalid_template.html",
			expectedErr:  ErrUnknownTemplate,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rendered, err := tp.Render(tc.templateName, tc.data)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tc.subject, rendered.Subject)
			for _, want := range tc.plain {
				assert.Contains(t, rendered.PlainBody, want)
			}
			for _, want := range tc.html {
				assert.Contains(t, rendered.HTMLBody, want)
			}
		})
	}
}
