package genservice

import "fmt"

const textPromptFormat = `Transform the following text into a polished, engaging blog post optimized for SEO:

Original text:
"""
%s
"""

Requirements:
- Create an engaging, attention-grabbing title
- Structure the content with proper headings (H2, H3)
- Use SEO-friendly formatting with bullet points, numbered lists where appropriate
- Include a compelling introduction and conclusion
- Optimize for readability and engagement
- Maintain the core message and insights from the original text
- Add relevant keywords naturally
- Write in a conversational yet professional tone
- Aim for 800-1500 words

Respond with a JSON object with the following structure:
{
  "title": "Blog post title",
  "content": "Full blog post content with HTML formatting",
  "imagePrompt": "A detailed description for an AI image generator that would create a relevant featured image for this blog post"
}`

const imagePromptFormat = "Create a modern, professional blog post featured image: %s. Style: clean, minimal, high-quality, suitable for a business blog."

func textPrompt(source string) string {
	return fmt.Sprintf(textPromptFormat, source)
}

func imagePrompt(prompt string) string {
	return fmt.Sprintf(imagePromptFormat, prompt)
}
