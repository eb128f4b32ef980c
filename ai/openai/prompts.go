package openai

const extractionPrompt = `You convert documents into clean plain text for a personal knowledge base.

Given the document below, return its content as plain text:
- Strip all markup (HTML tags, Markdown syntax, wiki syntax) but keep the text they wrap.
- Drop navigation menus, cookie banners, footers, and other boilerplate.
- Preserve paragraph breaks and the original wording. Do not summarize, translate, or rephrase.
- Preserve list items as one line each.
- Output ONLY the extracted text. No preamble, no explanation, no code fences.`
