/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package promptbuilder provides safe construction of judge prompts from
templates with {name} placeholders, such as the {kb} placeholder carried by
evaluator configuration. Dynamic content is bound through standard encoders
so that knowledge-base records and caller input are escaped rather than
spliced into the template as raw text.

Placeholders use a single pair of braces around an identifier, matching the
format used in configuration files:

	p, err := promptbuilder.NewPrompt(`You are a medical-safety judge.

	Knowledge base:
	{kb}`)
	if err != nil {
		// malformed template
	}

	p, err = p.BindJSON("kb", collection)
	if err != nil {
		// unknown or already-bound placeholder
	}

	prompt, err := p.Build()
	if err != nil {
		// unbound placeholder
	}

Brace pairs whose content is not a bare identifier (JSON snippets, prose)
are left verbatim, so templates may freely contain example output.

Prompts are immutable: every Bind method returns a new instance, and a
placeholder can be bound at most once. Build fails if any placeholder
remains unbound, which keeps configuration mistakes loud instead of sending
a half-rendered prompt to the judge.
*/
package promptbuilder
