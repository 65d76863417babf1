package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Foreign keys are RESTRICT on purpose: dependent rows must be removed by the
// cascade services in order, never implicitly by the database.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id          BIGSERIAL PRIMARY KEY,
	clerk_id    TEXT NOT NULL UNIQUE,
	email       TEXT NOT NULL DEFAULT '',
	first_name  TEXT NOT NULL DEFAULT '',
	last_name   TEXT NOT NULL DEFAULT '',
	role        TEXT NOT NULL DEFAULT 'student',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS topics (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS quizzes (
	id                 BIGSERIAL PRIMARY KEY,
	title              TEXT NOT NULL,
	description        TEXT NOT NULL DEFAULT '',
	difficulty         TEXT NOT NULL DEFAULT '',
	category           TEXT NOT NULL DEFAULT '',
	icon               TEXT NOT NULL DEFAULT '',
	color              TEXT NOT NULL DEFAULT '',
	time_limit_seconds INTEGER NOT NULL DEFAULT 0 CHECK (time_limit_seconds >= 0),
	topic_id           BIGINT REFERENCES topics(id),
	professor_id       BIGINT REFERENCES users(id),
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS questions (
	id       BIGSERIAL PRIMARY KEY,
	quiz_id  BIGINT NOT NULL REFERENCES quizzes(id),
	text     TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_questions_quiz ON questions(quiz_id);

CREATE TABLE IF NOT EXISTS options (
	id          BIGSERIAL PRIMARY KEY,
	question_id BIGINT NOT NULL REFERENCES questions(id),
	text        TEXT NOT NULL,
	is_correct  BOOLEAN NOT NULL DEFAULT false
);
CREATE INDEX IF NOT EXISTS idx_options_question ON options(question_id);

CREATE TABLE IF NOT EXISTS quiz_attempts (
	id                 BIGSERIAL PRIMARY KEY,
	user_id            BIGINT NOT NULL REFERENCES users(id),
	quiz_id            BIGINT NOT NULL REFERENCES quizzes(id),
	start_time         TIMESTAMPTZ NOT NULL,
	end_time           TIMESTAMPTZ,
	score              INTEGER NOT NULL DEFAULT 0,
	total_questions    INTEGER NOT NULL,
	time_taken_seconds BIGINT,
	status             TEXT NOT NULL DEFAULT 'active',
	version            INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_attempts_user ON quiz_attempts(user_id, start_time DESC);
CREATE INDEX IF NOT EXISTS idx_attempts_quiz ON quiz_attempts(quiz_id);
CREATE INDEX IF NOT EXISTS idx_attempts_active ON quiz_attempts(status) WHERE status = 'active';

CREATE TABLE IF NOT EXISTS responses (
	id          BIGSERIAL PRIMARY KEY,
	attempt_id  BIGINT NOT NULL REFERENCES quiz_attempts(id),
	question_id BIGINT NOT NULL REFERENCES questions(id),
	option_id   BIGINT REFERENCES options(id),
	is_correct  BOOLEAN NOT NULL DEFAULT false
);
CREATE INDEX IF NOT EXISTS idx_responses_attempt ON responses(attempt_id);
CREATE INDEX IF NOT EXISTS idx_responses_question ON responses(question_id);
CREATE INDEX IF NOT EXISTS idx_responses_option ON responses(option_id);
`

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
