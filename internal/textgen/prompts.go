package textgen

import (
	"fmt"
	"strings"
)

// buildContextSection renders the optional target-application section of the
// polish prompt. Empty or whitespace-only context yields no section.
func buildContextSection(appContext string) string {
	ctx := strings.TrimSpace(appContext)
	if ctx == "" {
		return ""
	}
	return fmt.Sprintf("\n\nContext about where this text will be used:\n%s\n"+
		"Adapt the tone, format and style to match the target application.\n"+
		"- Chat/messaging apps (Slack, Teams, iMessage): keep it casual and concise\n"+
		"- Email (Gmail, Outlook): use standard email structure (greeting line, body, sign-off), "+
		"format phone numbers and addresses properly, preserve the sender's greeting style "+
		"(e.g., \"Hi\" stays casual, don't upgrade to \"Dear\")\n"+
		"- Code editors: preserve technical terms and formatting\n"+
		"- Social media: follow platform conventions\n"+
		"IMPORTANT: Match the speaker's original level of formality — do NOT make casual speech overly formal.\n",
		ctx)
}

// buildPolishPrompt assembles the full prompt for the transcript polish pass.
func buildPolishPrompt(rawText, appContext string) string {
	return fmt.Sprintf("You are a professional text editor. Transform the following speech transcript into well-structured written text.\n\n"+
		"Rules:\n"+
		"1. Keep the SAME language as the original - do NOT translate\n"+
		"2. Convert spoken language to written language:\n"+
		"   - Remove filler words (e.g., \"um\", \"uh\", \"like\", \"you know\", or equivalents in other languages)\n"+
		"   - Clean up spoken-language patterns: remove filler words and fix grammar errors, but preserve the speaker's original sentence structure and phrasing choices. NEVER rewrite sentences into different forms.\n"+
		"   - Fix transcription errors (misheard words, typos)\n"+
		"   - Handle self-corrections: when the speaker changes their mind (e.g., \"let's meet at 7, actually make it 3\"), keep ONLY the final intention and remove the corrected content\n"+
		"3. Reorganize content logically:\n"+
		"   - Group related information together\n"+
		"   - Separate different topics into paragraphs with blank lines\n"+
		"4. When content contains multiple parallel points, requirements, or items, ALWAYS format them as a numbered or bulleted list — NEVER as separate paragraphs.\n"+
		"5. Preserve ALL substantive information - only remove verbal fillers, not actual content\n"+
		"6. Add proper punctuation and spacing\n"+
		"7. Output ONLY the final polished text - no comments or annotations\n"+
		"%s\nOriginal transcript:\n%s\n\nOutput the polished text directly.",
		buildContextSection(appContext), rawText)
}

// rewriteSystemInstruction steers the selection-edit pass.
const rewriteSystemInstruction = "You are a text editing assistant. The user has selected a piece of text " +
	"and spoken an instruction describing how to change it. Apply the instruction to the selected text. " +
	"Keep the original language, preserve formatting the instruction does not touch, and output ONLY the " +
	"edited text with no comments or annotations."

// buildRewritePrompt assembles the user prompt for the selection-edit pass.
func buildRewritePrompt(instruction, selected string) string {
	return fmt.Sprintf("Instruction:\n%s\n\nSelected text:\n%s\n\nOutput the edited text directly.",
		instruction, selected)
}
