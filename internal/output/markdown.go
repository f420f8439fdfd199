package output

import (
	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

// HTMLToMarkdown converts a cleaned page excerpt to Markdown. Snapshots are
// archived alongside their raw HTML in this form so a reviewer can scan what
// the parser saw without opening a browser.
func HTMLToMarkdown(htmlContent string) (string, error) {
	cleaned, err := CleanHTML(htmlContent)
	if err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return converter.ConvertString(cleaned)
}
