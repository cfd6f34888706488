package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				platform VARCHAR(50) NOT NULL,
				uploaded_at TIMESTAMP WITH TIME ZONE NOT NULL,
				payload JSONB NOT NULL
			);

			CREATE INDEX idx_workflows_uploaded_at ON workflows(uploaded_at);
			CREATE INDEX idx_workflows_platform ON workflows(platform);

			CREATE TABLE executions (
				id VARCHAR(255) PRIMARY KEY,
				workflow_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('running', 'completed', 'failed')),
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				payload JSONB NOT NULL
			);

			CREATE INDEX idx_executions_workflow_id ON executions(workflow_id, started_at);
		`,
		2: `
			CREATE TABLE schedules (
				id VARCHAR(255) PRIMARY KEY,
				workflow_id VARCHAR(255) NOT NULL,
				active BOOLEAN NOT NULL DEFAULT true,
				next_due_at TIMESTAMP WITH TIME ZONE NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				payload JSONB NOT NULL
			);

			CREATE INDEX idx_schedules_due ON schedules(active, next_due_at);
		`,
	}
}
