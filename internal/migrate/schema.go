package migrate

// Schema returns the judge application's shipped migrations. Each table
// uses IF NOT EXISTS so a re-run after a mid-migration crash converges
// instead of failing.
func Schema() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_users",
			Statements: []string{
				`CREATE TABLE IF NOT EXISTS users (
					id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
					username      VARCHAR(150)    NOT NULL,
					email         VARCHAR(254)    NOT NULL DEFAULT '',
					password_hash VARCHAR(255)    NOT NULL,
					is_staff      TINYINT(1)      NOT NULL DEFAULT 0,
					is_active     TINYINT(1)      NOT NULL DEFAULT 1,
					date_joined   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (id),
					UNIQUE KEY uniq_users_username (username)
				) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			},
		},
		{
			Version: 2,
			Name:    "create_problems",
			Statements: []string{
				`CREATE TABLE IF NOT EXISTS tags (
					id   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
					name VARCHAR(50)     NOT NULL,
					slug VARCHAR(50)     NOT NULL,
					PRIMARY KEY (id),
					UNIQUE KEY uniq_tags_name (name),
					UNIQUE KEY uniq_tags_slug (slug)
				) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
				`CREATE TABLE IF NOT EXISTS problems (
					id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
					title         VARCHAR(200)    NOT NULL,
					slug          VARCHAR(200)    NOT NULL,
					description   MEDIUMTEXT      NOT NULL,
					input_format  TEXT            NULL,
					output_format TEXT            NULL,
					constraints   TEXT            NULL,
					difficulty    ENUM('easy','medium','hard') NOT NULL DEFAULT 'easy',
					time_limit    DOUBLE          NOT NULL DEFAULT 1,
					memory_limit  INT             NOT NULL DEFAULT 256,
					is_published  TINYINT(1)      NOT NULL DEFAULT 0,
					solve_count   INT UNSIGNED    NOT NULL DEFAULT 0,
					attempt_count INT UNSIGNED    NOT NULL DEFAULT 0,
					created_by    BIGINT UNSIGNED NULL,
					created_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
					PRIMARY KEY (id),
					UNIQUE KEY uniq_problems_slug (slug),
					KEY idx_problems_difficulty (difficulty),
					CONSTRAINT fk_problems_created_by FOREIGN KEY (created_by) REFERENCES users (id) ON DELETE SET NULL
				) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
				`CREATE TABLE IF NOT EXISTS problem_tags (
					problem_id BIGINT UNSIGNED NOT NULL,
					tag_id     BIGINT UNSIGNED NOT NULL,
					PRIMARY KEY (problem_id, tag_id),
					CONSTRAINT fk_problem_tags_problem FOREIGN KEY (problem_id) REFERENCES problems (id) ON DELETE CASCADE,
					CONSTRAINT fk_problem_tags_tag FOREIGN KEY (tag_id) REFERENCES tags (id) ON DELETE CASCADE
				) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
				`CREATE TABLE IF NOT EXISTS test_cases (
					id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
					problem_id      BIGINT UNSIGNED NOT NULL,
					input_data      MEDIUMTEXT      NOT NULL,
					expected_output MEDIUMTEXT      NOT NULL,
					is_sample       TINYINT(1)      NOT NULL DEFAULT 0,
					sort_order      INT             NOT NULL DEFAULT 0,
					PRIMARY KEY (id),
					KEY idx_test_cases_problem (problem_id, sort_order),
					CONSTRAINT fk_test_cases_problem FOREIGN KEY (problem_id) REFERENCES problems (id) ON DELETE CASCADE
				) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			},
		},
		{
			Version: 3,
			Name:    "create_submissions",
			Statements: []string{
				`CREATE TABLE IF NOT EXISTS submissions (
					id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
					user_id       BIGINT UNSIGNED NOT NULL,
					problem_id    BIGINT UNSIGNED NOT NULL,
					language      VARCHAR(10)     NOT NULL,
					code          MEDIUMTEXT      NOT NULL,
					status        VARCHAR(20)     NOT NULL DEFAULT 'pending',
					runtime_ms    INT             NULL,
					memory_kb     INT             NULL,
					error_message TEXT            NULL,
					tests_passed  INT UNSIGNED    NOT NULL DEFAULT 0,
					tests_total   INT UNSIGNED    NOT NULL DEFAULT 0,
					submitted_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
					judged_at     DATETIME        NULL,
					PRIMARY KEY (id),
					KEY idx_submissions_user (user_id, submitted_at),
					KEY idx_submissions_problem_status (problem_id, status),
					CONSTRAINT fk_submissions_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
					CONSTRAINT fk_submissions_problem FOREIGN KEY (problem_id) REFERENCES problems (id) ON DELETE CASCADE
				) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
				`CREATE TABLE IF NOT EXISTS submission_test_results (
					id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
					submission_id BIGINT UNSIGNED NOT NULL,
					test_case_id  BIGINT UNSIGNED NOT NULL,
					status        VARCHAR(20)     NOT NULL,
					actual_output MEDIUMTEXT      NULL,
					runtime_ms    INT             NOT NULL DEFAULT 0,
					memory_kb     INT             NOT NULL DEFAULT 0,
					error_message TEXT            NULL,
					PRIMARY KEY (id),
					KEY idx_test_results_submission (submission_id),
					CONSTRAINT fk_test_results_submission FOREIGN KEY (submission_id) REFERENCES submissions (id) ON DELETE CASCADE,
					CONSTRAINT fk_test_results_test_case FOREIGN KEY (test_case_id) REFERENCES test_cases (id) ON DELETE CASCADE
				) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			},
		},
	}
}
