package answers

// Prompt templates. Slots are filled with fmt.Sprintf; all prompts are plain
// text and provider-independent.

const summarizePrompt = `Summarize the following job description in a concise form.
Keep the role title, required skills, years of experience, location constraints and anything
a candidate must address in an application. Drop benefits, company marketing and legal boilerplate.
Return only the summary text.

Job description:
%s`

const sectionRouterPrompt = `For the following question: '%s', which section of the resume is relevant?
Respond with exactly one of the following:
Personal Information, Self Identification, Legal Authorization, Work Preferences,
Education Details, Experience Details, Projects, Availability, Salary Expectations,
Certifications, Languages, Interests, Cover Letter.
Respond with the section name only.`

const sectionAnswerPrompt = `You are answering a job application form on behalf of a candidate.
Use only the resume section below. %s
Answer the question directly, in first person, without preamble and without repeating the question.
Do not invent facts that are not in the section. If the section lacks the answer, give the most
reasonable short answer consistent with it.

Resume section:
%s

Question: %s

Answer:`

// sectionGuidance tunes the shared section prompt per routed section.
var sectionGuidance = map[string]string{
	"personal_information": "Answer with the exact personal detail asked for (name, phone, email, address).",
	"self_identification":  "Answer questions about gender, pronouns, veteran or disability status exactly as stated in the section.",
	"legal_authorization":  "Answer work-authorization and visa questions with a clear yes or no plus the shortest needed qualifier.",
	"work_preferences":     "Answer questions about remote work, relocation, travel and notice period.",
	"education_details":    "Answer with degrees, institutions, fields of study and graduation years.",
	"experience_details":   "Answer with roles, employers, technologies and accomplishments; quantify where the section does.",
	"projects":             "Describe the most relevant project briefly, with its outcome.",
	"availability":         "Answer with the candidate's start date or notice period.",
	"salary_expectations":  "Answer with a single number or range, no commentary.",
	"certifications":       "List the relevant certifications by exact name.",
	"languages":            "Answer with languages and proficiency levels.",
	"interests":            "Answer briefly and professionally.",
}

const numericPrompt = `Read the candidate's resume and answer the question with a single whole number.
If the resume does not contain enough information, answer %d.
Respond with the number only, no words.

Resume:
%s

Question: %s`

const optionsPrompt = `Read the candidate's resume and pick the best answer to the question
from the given options. Respond with exactly one option, verbatim.

Resume:
%s

Question: %s

Options: %s`

const datePrompt = `Today is %s. Answer the following question from a job application form
with a single date in YYYY-MM-DD format. If the question asks for an earliest start date and
the resume gives no constraint, answer with a date two weeks from today.
Respond with the date only.

Question: %s`

const coverLetterPrompt = `Write a short cover letter (under 300 words) for the job below, based on the
candidate's resume. Plain text, no placeholders, no salutation template fields, no markdown.
Address the strongest two or three matches between the resume and the job requirements.

Job summary:
%s

Resume:
%s`

const suitabilityPrompt = `Evaluate how well the candidate's resume matches the job description.
Respond in exactly this format:
Score: <integer 1-10>
Reasoning: <one or two sentences>

Job description:
%s

Resume:
%s`

const resumeHTMLPrompt = `Produce a tailored resume for the job below as a complete, self-contained HTML
document (inline CSS, single sans-serif font, A4-friendly). Reorder and reword the candidate's real
experience to foreground what the job asks for. Never invent employers, dates or credentials.
Return only the HTML.

Job description:
%s

Resume:
%s`

const uploadTargetPrompt = `A job application form has a file-upload field with this heading: '%s'.
Does it ask for the candidate's resume or a cover letter?
Respond with exactly one word: resume or cover_letter.`
