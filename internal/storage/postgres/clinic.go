package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/aura-clinic/aura/internal/models"
)

const patientColumns = `id, nome, telefone, email, cpf, data_cadastro, responsavel_id`

func (s *Store) CreatePatient(ctx context.Context, p models.Patient) (models.Patient, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO pacientes (nome, telefone, email, cpf, responsavel_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+patientColumns,
		p.Name, p.Phone, nullable(p.Email), nullable(p.TaxID), p.OwnerID,
	)
	created, err := scanPatient(row)
	if err != nil {
		return models.Patient{}, uniqueViolation(err)
	}
	return created, nil
}

func (s *Store) FindPatient(ctx context.Context, id int64) (models.Patient, error) {
	return scanPatient(s.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM pacientes WHERE id = $1`, id))
}

func (s *Store) FindPatientByTaxID(ctx context.Context, taxID string) (models.Patient, error) {
	return scanPatient(s.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM pacientes WHERE cpf = $1`, taxID))
}

func (s *Store) ListPatients(ctx context.Context, ownerID int64) ([]models.Patient, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+patientColumns+` FROM pacientes
		 WHERE responsavel_id = $1 OR responsavel_id IS NULL
		 ORDER BY nome`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPatient(row pgx.Row) (models.Patient, error) {
	var p models.Patient
	var email, cpf *string
	if err := row.Scan(&p.ID, &p.Name, &p.Phone, &email, &cpf, &p.RegistrationDate, &p.OwnerID); err != nil {
		return models.Patient{}, notFound(err)
	}
	p.Email = deref(email)
	p.TaxID = deref(cpf)
	return p, nil
}

const appointmentSelect = `
	SELECT a.id, a.paciente_id, a.data_hora_inicio, a.data_hora_fim, a.tipo, a.status,
	       a.valor_previsto::float8, a.sala, a.observacoes, a.responsavel_id,
	       p.id, p.nome, p.telefone, p.email, p.cpf, p.data_cadastro, p.responsavel_id
	FROM agendamentos a
	JOIN pacientes p ON p.id = a.paciente_id`

func (s *Store) CreateAppointment(ctx context.Context, a models.Appointment) (models.Appointment, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO agendamentos
		   (paciente_id, data_hora_inicio, data_hora_fim, tipo, status, valor_previsto, sala, observacoes, responsavel_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		a.PatientID, a.StartTime, a.EndTime, a.Type, string(a.Status), a.ExpectedValue, a.Room, nullable(a.Notes), a.OwnerID,
	).Scan(&id)
	if err != nil {
		return models.Appointment{}, err
	}
	return scanAppointment(s.pool.QueryRow(ctx, appointmentSelect+` WHERE a.id = $1`, id))
}

func (s *Store) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	rows, err := s.pool.Query(ctx, appointmentSelect+` ORDER BY a.data_hora_inicio`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(row pgx.Row) (models.Appointment, error) {
	var a models.Appointment
	var status string
	var notes, email, cpf *string
	err := row.Scan(
		&a.ID, &a.PatientID, &a.StartTime, &a.EndTime, &a.Type, &status,
		&a.ExpectedValue, &a.Room, &notes, &a.OwnerID,
		&a.Patient.ID, &a.Patient.Name, &a.Patient.Phone, &email, &cpf, &a.Patient.RegistrationDate, &a.Patient.OwnerID,
	)
	if err != nil {
		return models.Appointment{}, notFound(err)
	}
	a.Status = models.AppointmentStatus(status)
	a.Notes = deref(notes)
	a.Patient.Email = deref(email)
	a.Patient.TaxID = deref(cpf)
	return a, nil
}

func (s *Store) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO transacoes (descricao, valor, tipo, categoria, pago, responsavel_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, data_competencia`,
		t.Description, t.Value, t.Kind, t.Category, t.Paid, t.OwnerID,
	).Scan(&t.ID, &t.CompetencyDate)
	return t, err
}

func (s *Store) ListTransactions(ctx context.Context, ownerID int64) ([]models.Transaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, descricao, valor::float8, tipo, categoria, pago, data_competencia, responsavel_id
		 FROM transacoes
		 WHERE responsavel_id = $1 OR responsavel_id IS NULL
		 ORDER BY data_competencia DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Description, &t.Value, &t.Kind, &t.Category, &t.Paid, &t.CompetencyDate, &t.OwnerID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
