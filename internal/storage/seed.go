package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// Static reference data. Questions and answers drive the MBTI
// questionnaire; each of the 16 types carries the chat style the
// assistant uses to tune its tone.

var seedQuestions = []string{
	"It's a rare, completely free Saturday with perfect weather. How do you kick it off?",
	"You walk into a house-party where you know only the host. What's your immediate move?",
	"During a fast-moving brainstorm at work or class, you usually…",
	"Learning something brand new on YouTube, you care most about…",
	"Reading a trending novel, what hooks you?",
	"At your dream job, which feedback excites you more?",
	"Big decision time: a friend asks your advice. You default to…",
	"Mid-debate on Discord, the part you secretly enjoy is…",
	"A project's kickoff meeting is tomorrow. Tonight you're most likely to…",
	"You wake up to an empty weekend, no commitments. Your perfect plan is to…",
}

type seedAnswer struct {
	questionID int64
	answer     string
}

var seedAnswers = []seedAnswer{
	{1, "Rally a bunch of friends for an impromptu adventure downtown"},
	{1, "DM a few pals to grab coffee and wander"},
	{1, "Curl up solo with your favourite show or game"},
	{1, "Take a peaceful nature walk alone, phone on Do Not Disturb"},

	{2, "Bounce around introducing yourself to everyone"},
	{2, "Slide into a small group chat in the kitchen for chill convo"},
	{2, "Hang back, observe the vibe, chat once approached"},
	{2, "Locate the pet / balcony and people-watch in peace"},

	{3, "Fire off ideas as they pop into your head"},
	{3, "Share after a quick think so the convo stays lively"},
	{3, "Listen, mull things over, then offer a polished thought"},
	{3, "Sketch ideas privately first, share them later in chat"},

	{4, "Clear step-by-step tutorials with real demos"},
	{4, "Practical hacks you can copy right away"},
	{4, "The bigger concept behind why it works"},
	{4, "The future possibilities the idea unlocks"},

	{5, "Sensory details that make the world feel tangible"},
	{5, "Everyday characters you could totally know IRL"},
	{5, "Hidden symbols & Easter-eggs to decode"},
	{5, "Philosophical themes you can debate for hours"},

	{6, "'Great execution—exactly followed the proven playbook.'"},
	{6, "'Love how practical your solution is—instantly usable.'"},
	{6, "'Brilliant twist—never would've thought of that angle.'"},
	{6, "'Your vision redefines where we're headed long-term.'"},

	{7, "Lay out the cold facts and probabilities"},
	{7, "Step back emotionally, list pros & cons logically"},
	{7, "Ask how each option aligns with their values"},
	{7, "Tune into the mood and reassure them you've got them"},

	{8, "Spotting logical fallacies like a detective"},
	{8, "Stress-testing ideas until only the strongest survive"},
	{8, "Hearing the human story behind each viewpoint"},
	{8, "Guiding everyone toward a warm, mutual 'aha' moment"},

	{9, "Build a colour-coded timeline with fixed milestones"},
	{9, "Pre-assign tasks in Notion so morning runs smoothly"},
	{9, "Leave wiggle-room so you can pivot if inspiration strikes"},
	{9, "Wait to see the vibes tomorrow before locking anything"},

	{10, "Immediately map out activities in your calendar"},
	{10, "Knock out errands so Monday-you feels accomplished"},
	{10, "Decide each morning based on your current mood"},
	{10, "Let random invites and surprises dictate the flow"},
}

type seedMBTIType struct {
	personaID   string
	name        string
	description string
}

var seedMBTITypes = []seedMBTIType{
	{"INTJ", "The Architect", "Imaginative, strategic, and always planning three steps ahead."},
	{"INTP", "The Thinker", "Curious and logical minds who live to analyze and understand everything."},
	{"ENTJ", "The Commander", "Bold, visionary leaders who love to organize and execute big plans."},
	{"ENTP", "The Debater", "Energetic brainstormers who challenge ideas just for the thrill of it."},
	{"INFJ", "The Advocate", "Insightful idealists who fight for purpose and quietly move mountains."},
	{"INFP", "The Mediator", "Empathetic, dreamy creatives with deep values and a love for meaning."},
	{"ENFJ", "The Protagonist", "Inspiring motivators who light up rooms and lift up people."},
	{"ENFP", "The Campaigner", "Free-spirited enthusiasts full of ideas, emotions, and energy."},
	{"ISTJ", "The Logistician", "Reliable and practical planners who value structure and order."},
	{"ISFJ", "The Defender", "Quiet protectors with a strong sense of duty and a kind heart."},
	{"ESTJ", "The Executive", "Organized and confident leaders who get things done."},
	{"ESFJ", "The Consul", "Warm and loyal helpers who love bringing people together."},
	{"ISTP", "The Virtuoso", "Independent experimenters who love building, fixing, and hacking life."},
	{"ISFP", "The Adventurer", "Creative souls who live in the moment and chase beauty and freedom."},
	{"ESTP", "The Dynamo", "Bold risk-takers who thrive on action, thrills, and quick thinking."},
	{"ESFP", "The Entertainer", "Charismatic performers who light up the room and live for the vibe."},
}

type seedChatStyle struct {
	mbtiTypeID  int64
	keywords    []string
	temperature float64
}

var seedChatStyles = []seedChatStyle{
	{1, []string{"strategic", "concise", "logical"}, 0.6},
	{2, []string{"curious", "analytical", "abstract"}, 0.7},
	{3, []string{"direct", "efficient", "assertive"}, 0.6},
	{4, []string{"playful", "clever", "spontaneous"}, 0.85},
	{5, []string{"warm", "thoughtful", "visionary"}, 0.75},
	{6, []string{"gentle", "encouraging", "dreamy"}, 0.85},
	{7, []string{"motivational", "empathetic", "inspiring"}, 0.8},
	{8, []string{"upbeat", "quirky", "imaginative"}, 0.9},
	{9, []string{"organized", "factual", "grounded"}, 0.5},
	{10, []string{"supportive", "calm", "loyal"}, 0.6},
	{11, []string{"structured", "assertive", "pragmatic"}, 0.55},
	{12, []string{"caring", "social", "inclusive"}, 0.7},
	{13, []string{"pragmatic", "cool-headed", "action-oriented"}, 0.65},
	{14, []string{"gentle", "aesthetic", "expressive"}, 0.8},
	{15, []string{"bold", "fast-paced", "witty"}, 0.85},
	{16, []string{"fun", "expressive", "high-energy"}, 0.9},
}

// SeedStaticData inserts the questionnaire and MBTI reference data if
// the tables are empty. Safe to call on every startup.
func (db *DB) SeedStaticData() error {
	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM mbti_types`).Scan(&count); err != nil {
		return fmt.Errorf("check seed state: %w", err)
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *sql.Tx) error {
		for _, q := range seedQuestions {
			if _, err := tx.Exec(`INSERT INTO questions (question) VALUES (?)`, q); err != nil {
				return fmt.Errorf("seed questions: %w", err)
			}
		}

		for _, a := range seedAnswers {
			if _, err := tx.Exec(
				`INSERT INTO answers (question_id, answer) VALUES (?, ?)`,
				a.questionID, a.answer,
			); err != nil {
				return fmt.Errorf("seed answers: %w", err)
			}
		}

		for _, m := range seedMBTITypes {
			if _, err := tx.Exec(
				`INSERT INTO mbti_types (persona_id, name, description) VALUES (?, ?, ?)`,
				m.personaID, m.name, m.description,
			); err != nil {
				return fmt.Errorf("seed mbti types: %w", err)
			}
		}

		for _, cs := range seedChatStyles {
			keywords, err := json.Marshal(cs.keywords)
			if err != nil {
				return fmt.Errorf("seed chat styles: %w", err)
			}
			if _, err := tx.Exec(
				`INSERT INTO chat_styles (mbti_type_id, keywords, temperature) VALUES (?, ?, ?)`,
				cs.mbtiTypeID, string(keywords), cs.temperature,
			); err != nil {
				return fmt.Errorf("seed chat styles: %w", err)
			}
		}

		return nil
	})
}
