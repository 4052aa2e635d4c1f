package mcpserver

// RuleFormatContract describes how view modes are pinned, for LLM consumers
// that edit notes or call the lock tools.
const RuleFormatContract = `# View Mode Rule Format

Every note opens in one of three view modes:

- ` + "`" + `reading` + "`" + `: rendered preview, not editable
- ` + "`" + `source` + "`" + `: raw Markdown editor
- ` + "`" + `live` + "`" + `: editor with live preview

## Rule strings

Folder rules and pattern rules store their mode as a rule string:

- ` + "`" + `<key>: <mode>` + "`" + `, for example ` + "`" + `current view: reading` + "`" + `
- ` + "`" + `default` + "`" + `, which clears whatever an earlier rule decided

The key is the configured frontmatter key (default ` + "`" + `current view` + "`" + `).

## Precedence

1. Folder rules apply to every note under the folder. Deeper folders win.
2. Pattern rules come after all folder rules. A pattern matches a note when it
   equals the note path exactly or, as a regular expression, matches the note
   basename (file name without ` + "`" + `.md` + "`" + `). Later pattern rules win.
3. A ` + "`" + `default` + "`" + ` rule anywhere resets the decision so far.
4. With no rule, the note's own frontmatter decides:

` + "```" + `markdown
---
current view: source
---
` + "```" + `

5. With nothing at all, the editor's own default view is used.

## Tools

- ` + "`" + `resolve_view_mode` + "`" + ` shows which rules matched a note and the resulting mode.
- ` + "`" + `lookup_lock` + "`" + ` shows the rule string that pins a note or folder.
- ` + "`" + `lock_path` + "`" + ` / ` + "`" + `unlock_path` + "`" + ` pin or release a file (exact pattern rule)
  or folder (folder rule).
- ` + "`" + `list_rules` + "`" + ` lists both rule tables in priority order.
`
