// Prompt construction for the Gemini assistant. The text mirrors what the
// product asks of the model; structure is enforced separately via the
// response schema in llm.go.

package app

import (
	"fmt"
	"strings"

	"github.com/Mohamadaloreibi/matchai-talent-finder/app/models"
)

const matchSystemPrompt = `You are an expert HR and recruitment AI assistant. Your task is to analyze CVs and job descriptions to provide accurate match scores and insights.

Analyze the provided CV and job description, then return a JSON object with:
1. score: A number between 0-100 representing how well the candidate matches the job
2. confidence_score: A number between 0.0-1.0 for how confident you are in the score
3. summary: A brief summary (2-3 sentences) of why the candidate is a good fit
4. matchingSkills: Array of skills that match between CV and job description
5. missingSkills: Array of skills mentioned in job description but not in CV
6. extraSkills: Array of relevant skills the candidate has that aren't mentioned in the job description

Be objective, professional, and focus on actual qualifications and requirements.`

func buildMatchPrompt(req models.MatchRequest) string {
	return fmt.Sprintf(`Job Description:
%s

Candidate CV:
%s

Please analyze this match and provide the results in the exact JSON format specified.`,
		req.JobDescription, req.CVText)
}

func buildCoverLetterPrompt(req models.CoverLetterRequest, targetLanguage string) string {
	matchSummary := req.MatchSummary
	if matchSummary == "" {
		matchSummary = "N/A"
	}
	skills := "N/A"
	if len(req.MatchingSkills) > 0 {
		skills = strings.Join(req.MatchingSkills, ", ")
	}

	return fmt.Sprintf(`You are a professional Swedish and English career writer who crafts realistic, well-structured, and human-sounding cover letters for job applications.
You must always produce grammatically correct, fluent text with a clear structure, appropriate tone, and content that aligns closely with the candidate's actual background.

Context:
Candidate name: %s
Role: %s
Company: %s
Language: %s
Tone: %s

CV text:
"""%s"""

Job description:
"""%s"""

Match summary (if available):
%s

Top overlapping skills:
%s

Requirements:
1. Maximum 300 words.
2. Write in a natural, confident and professional tone.
3. Mention 2-3 overlapping skills that appear in both the CV and the Job Description.
4. Reference ONE specific experience or project from the CV with clear results or impact.
5. NEVER invent or guess names of schools, companies or locations that are not explicitly mentioned in the CV.
6. Avoid generic filler phrases such as "Jag tror att" or "Jag brinner för teknik".
7. If language = Swedish, ensure correct business Swedish grammar and sentence flow.
8. If language = English, ensure natural British English phrasing.
9. End with a short, polite closing that fits the language context.
10. Do not include placeholders like [Company Name] or markdown formatting.

Return only the finalized letter text, with paragraph breaks, and nothing else.`,
		req.CandidateName, req.JobTitle, req.Company, targetLanguage, req.Tone,
		req.CVText, req.JobDescription, matchSummary, skills)
}

func buildExplainPrompt(req models.ExplainLetterRequest) string {
	return fmt.Sprintf(`You are an AI career writing expert.
Your task is to analyze and explain the AI-generated cover letter based on the user's CV and the job description.
Explain the reasoning behind how the letter was written - what strengths it highlights, how it matches the job, and what could be improved.

Context Data:
Language: %s
Tone: %s
Job Title: %s
Company: %s

CV Text:
"""%s"""

Job Description:
"""%s"""

Cover Letter:
"""%s"""

Instructions:
1. Write the explanation in %s (Swedish if "sv", English if "en").
2. Start with a short summary paragraph about the overall quality of the letter.
3. Then list 3-5 bullet points under "Styrkor / Strengths".
4. Then list 2-3 bullet points under "Förbättringar / Improvements".
5. Never rewrite or modify the letter itself.
6. Keep the explanation concise, professional, and clear.
7. Output only the explanation text (no markdown, no code).`,
		req.TargetLanguage, req.Tone, req.JobTitle, req.Company,
		req.CVText, req.JobDescription, req.CurrentLetter, req.TargetLanguage)
}
