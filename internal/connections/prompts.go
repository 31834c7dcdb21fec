package connections

// LLM prompt templates. Data only, no logic.

const anchorSystemPrompt = `You extract explicit anchors from a person's background text.
Respond with valid JSON only:
{"companies": [], "institutions": [], "organizations": [], "projects": [], "locations": [], "keywords": []}

Rules:
- Copy entity names exactly as written. Do NOT infer, expand or guess entities that are not stated.
- companies: employers where the person worked or interned.
- institutions: schools and universities the person attended.
- organizations: clubs, nonprofits, communities or teams the person is a member of.
- Do NOT include entities that only awarded, recognized, certified or funded the person unless membership or employment is explicitly stated.
- projects: named projects the person built or contributed to.
- locations: cities, regions or countries explicitly mentioned.
- keywords: up to 8 skills or domains explicitly mentioned.
- Use empty arrays when nothing qualifies.`

// Args: background text.
const anchorUserPrompt = `Background:
%s`

const goalSystemPrompt = `You decompose a career goal into search targets.
Respond with valid JSON only:
{"field": "", "target_companies": [], "target_roles": [], "help_needed": [], "seniority_targets": {"near_peer": [], "senior": []}}

Rules:
- field: the industry or discipline of the goal, a short phrase.
- target_roles: 2-5 concrete job titles that fit the goal.
- target_companies: only companies named in the goal.
- help_needed: what kind of help the person needs (referrals, mentorship, internships, advice).
- near_peer: titles one or two steps ahead of the person; senior: titles of people who make hiring decisions.
- Take the education level into account when choosing seniority.`

// Args: goal title, education level.
const goalUserPrompt = `Goal: %s
Education level: %s`

const queryPlannerSystemPrompt = `You plan web search queries that find people and programs connected to a user.
Respond with valid JSON only:
{"person_queries": [], "program_queries": [], "required_anchor_terms": [], "exclude_terms": [], "notes": []}

Rules:
- Every query MUST contain at least one anchor term copied exactly from the anchors.
- person_queries find individual profiles (for example LinkedIn or team pages) of people tied to an anchor and the goal roles.
- program_queries find fellowships, internships, mentorship or early-career programs run by or tied to an anchor.
- Broaden level 0: strict anchor plus goal role terms.
- Broaden level 1: also use locations and broader roles.
- Broaden level 2: also use industry-wide and alumni-style terms, still anchored.
- exclude_terms: words that indicate irrelevant results.
- Return at most %d queries per list.`

// Args: anchors JSON, goal JSON, broaden level, want people, want programs.
const queryPlannerUserPrompt = `Anchors:
%s

Goal:
%s

Broaden level: %d
Want people: %t
Want programs: %t`

const candidateSystemPrompt = `You extract one candidate connection from a web page.
Respond with valid JSON only, one of:
{"type": "person", "person": {"name": "", "current_role": "", "company": "", "education": [], "past_companies": [], "organizations": [], "projects": [], "verified_profile_url": "", "evidence_snippets": []}}
{"type": "program", "program": {"name": "", "organization": "", "program_type": "", "website_url": "", "eligibility": [], "evidence_snippets": []}}
{"type": "none"}

Rules:
- Use ONLY facts present in the page. Do NOT invent employers, schools or URLs.
- evidence_snippets: 1-3 short quotes from the page that support the facts.
- verified_profile_url / website_url: the canonical page of the person or program, if shown.
- Return {"type": "none"} when the page is not about a single person or program.`

// Args: search query, title, URL, snippet, page text.
const candidateUserPrompt = `Search query: %s
Title: %s
URL: %s
Snippet: %s

Page text:
%s`

const alignmentSystemPrompt = `You judge how well a candidate connection helps a career goal.
Respond with valid JSON only:
{"goal_alignment": "", "alignment_tags": [], "confidence": 0.0}

Rules:
- goal_alignment: one sentence on how the candidate relates to the goal.
- alignment_tags: 1-4 short tags (role match, company match, field match, program fit).
- confidence: number between 0 and 1.`

// Args: goal JSON, candidate JSON.
const alignmentUserPrompt = `Goal:
%s

Candidate:
%s`

const accessibilitySystemPrompt = `You judge whether a candidate connection is realistically reachable by the user.
Respond with valid JSON only:
{"keep": true, "accessibility_score": 0.0, "reasons": []}

Rules:
- keep=false for celebrities, top executives of large companies, or programs the user is clearly ineligible for.
- accessibility_score: number between 0 and 1, higher means easier to reach.
- reasons: 1-3 short reasons.`

// Args: education level, candidate JSON.
const accessibilityUserPrompt = `User education level: %s

Candidate:
%s`

const writeupSystemPrompt = `You write short outreach copy for a connection.
Respond with valid JSON only:
{"connection_reason": "", "outreach_message": ""}

Rules:
- connection_reason: 1-2 sentences addressed to the user ("you"), stating only facts from the shared background.
- outreach_message: for a person, a 4-7 sentence message the user could send; for a program, null.
- Plain text, no markdown.`

// Args: goal title, connection JSON.
const writeupUserPrompt = `User goal: %s

Connection:
%s`
