// Package catalog holds the static mission and chest definitions. The
// catalog is read-only configuration consumed by the ledger and the
// transport layer; nothing in this service mutates it.
package catalog

import (
	"context"

	"benefits-points-service/internal/domain"
)

// StaticLoader serves catalog entries from an in-memory map (the
// built-in catalog, also useful for tests). A Postgres-backed loader can
// replace it behind the same cache.
type StaticLoader struct {
	missions map[string]domain.Mission
	chests   map[string]domain.Chest
}

func NewStaticLoader(missions map[string]domain.Mission, chests map[string]domain.Chest) *StaticLoader {
	return &StaticLoader{missions: missions, chests: chests}
}

func (l *StaticLoader) LoadMission(_ context.Context, missionID string) (domain.Mission, error) {
	if m, ok := l.missions[missionID]; ok {
		return m, nil
	}
	return domain.Mission{}, domain.ErrMissionNotFound
}

func (l *StaticLoader) LoadChest(_ context.Context, chestID string) (domain.Chest, error) {
	if c, ok := l.chests[chestID]; ok {
		return c, nil
	}
	return domain.Chest{}, domain.ErrChestNotFound
}

// Default returns the built-in catalog shipped with the app.
func Default() *StaticLoader {
	return NewStaticLoader(DefaultMissions(), DefaultChests())
}

// DefaultChests lists the bonus chests and their prerequisite missions.
func DefaultChests() map[string]domain.Chest {
	return map[string]domain.Chest{
		"chest_1": {
			ID:               "chest_1",
			Points:           10,
			RequiredMissions: []string{"profile", "quiz2"},
		},
		"chest_mission3": {
			ID:               "chest_mission3",
			Points:           15,
			RequiredMissions: []string{"profile", "quiz2", "quiz3"},
		},
		"chest_streak": {
			ID:               "chest_streak",
			Points:           25,
			RequiredMissions: []string{"profile", "quiz2", "quiz3", "quiz4"},
		},
		"chest_weekend": {
			ID:               "chest_weekend",
			Points:           30,
			RequiredMissions: []string{"profile", "quiz2", "quiz3", "quiz4", "13"},
		},
	}
}

// DefaultMissions lists every completable mission with its award rules.
func DefaultMissions() map[string]domain.Mission {
	return map[string]domain.Mission{
		"profile": {
			ID:          "profile",
			Title:       "Preencha seu perfil",
			Kind:        domain.MissionFixed,
			FixedPoints: 10,
		},
		"quiz2": {
			ID:          "quiz2",
			Title:       "Desafio de Conhecimento",
			Description: "Teste seus conhecimentos sobre o sistema MENTORH",
			Kind:        domain.MissionQuiz,
			Quiz: domain.QuizConfig{
				PointsPerCorrect:    2,
				MaxCorrect:          10,
				MaxTimeBonusSeconds: 300,
				MaxTimeBonusPoints:  10,
				MaxTotalPoints:      30,
			},
			Questions: quiz2Questions(),
		},
		"quiz3": {
			ID:          "quiz3",
			Title:       "Desafio de Conhecimento",
			Description: "Assista ao vídeo e responda as perguntas baseadas no conteúdo",
			Kind:        domain.MissionQuiz,
			VideoURL:    "u31qwQUeGuM",
			Quiz: domain.QuizConfig{
				PointsPerCorrect:    5,
				MaxCorrect:          2,
				MaxTimeBonusSeconds: 180,
				MaxTimeBonusPoints:  5,
				MaxTotalPoints:      15,
			},
			Questions: videoQuestions(),
		},
		"quiz4": {
			ID:          "quiz4",
			Title:       "Desafio de Conhecimento",
			Description: "Assista ao vídeo e responda as perguntas baseadas no conteúdo",
			Kind:        domain.MissionQuiz,
			VideoURL:    "u31qwQUeGuM",
			Quiz: domain.QuizConfig{
				PointsPerCorrect:    5,
				MaxCorrect:          2,
				MaxTimeBonusSeconds: 180,
				MaxTimeBonusPoints:  5,
				MaxTotalPoints:      15,
			},
			Questions: videoQuestions(),
		},
		"13": {
			ID:    "13",
			Title: "Caça Palavras da Empresa",
			Kind:  domain.MissionWordSearch,
			WordSearch: domain.WordSearchConfig{
				BasePoints:      15,
				BonusWindowSecs: 300,
				SecondsPerBonus: 60,
			},
		},
	}
}

func quiz2Questions() []domain.Question {
	return []domain.Question{
		{
			ID:    1,
			Title: "Ao ingressar no órgão onde é realizado o cadastro com os dados básicos no MENTORH?",
			Options: []domain.Option{
				{Key: "A", Text: "Dados Funcionais > Servidores > Cadastro"},
				{Key: "B", Text: "Dados Funcionais > Pessoas > Cadastro"},
				{Key: "C", Text: "Folha de Pagamento > Lançamentos > Rubrica Individual"},
				{Key: "D", Text: "Tabelas Básicas e Cadastrais > Institucional"},
			},
			Correct: "B",
		},
		{
			ID:    2,
			Title: "Após ingressado no órgão e cadastrado os dados básicos do servidor, onde é realizado o cadastro com os dados funcionais no MENTORH?",
			Options: []domain.Option{
				{Key: "A", Text: "Dados Funcionais > Servidores > Cadastro"},
				{Key: "B", Text: "Administração > Parametrização > Parametros do Sistema"},
				{Key: "C", Text: "Folha de Pagamento > Lançamentos > Rubrica Individual"},
				{Key: "D", Text: "Tabelas Básicas e Cadastrais > Institucional"},
			},
			Correct: "A",
		},
		{
			ID:    3,
			Title: "Qual módulo é cadastrado no MENTORH Cargo Efetivo?",
			Options: []domain.Option{
				{Key: "A", Text: "Administração > Parametrização > Parametros do Sistema"},
				{Key: "B", Text: "Folha de Pagamento > Prepara Cálculo > Congelamento de Dados"},
				{Key: "C", Text: "Dados Funcionais > Cargo Efetivo > Cadastro"},
				{Key: "D", Text: "Dados Funcionais > Movimentação"},
			},
			Correct: "C",
		},
		{
			ID:    4,
			Title: "Servidor informou ao órgão que possui 2 dependentes, onde é realizado o cadastro?",
			Options: []domain.Option{
				{Key: "A", Text: "Dados Funcionais > Pensão Alimentícia"},
				{Key: "B", Text: "Dados Funcionais > Cadastro de Dependentes"},
				{Key: "C", Text: "Estágio Probatório > Avaliação > Cadastro"},
				{Key: "D", Text: "Frequência > Férias > Concessão"},
			},
			Correct: "B",
		},
		{
			ID:    5,
			Title: "Servidor completou 12 meses de ingresso ao órgão e deseja marcar as suas férias, contudo é necessário realizar dois cadastros: concessão e gozo. Qual é o módulo para cadastro da Concessão?",
			Options: []domain.Option{
				{Key: "A", Text: "Frequência > Férias > Concessão"},
				{Key: "B", Text: "Frequência > Férias > Gozo"},
				{Key: "C", Text: "Frequência > Ficha de Frequência > Emissão"},
				{Key: "D", Text: "Frequência > Ponto Eletrônico > Horário Individual > Cadastro Horário Individual"},
			},
			Correct: "A",
		},
		{
			ID:    6,
			Title: "Servidor com atestado de 10 dias. Onde registrar o afastamento?",
			Options: []domain.Option{
				{Key: "A", Text: "Frequência > Afastamento > Cadastro"},
				{Key: "B", Text: "Frequência > Licença Prêmio/Capacitação > Concessão"},
				{Key: "C", Text: "Treinamento / Capacitação > Formação Acadêmica"},
				{Key: "D", Text: "Registro Funcional > Abono de Permanência"},
			},
			Correct: "A",
		},
		{
			ID:    7,
			Title: "Qual módulo é cadastrado o Regime Jurídico do servidor?",
			Options: []domain.Option{
				{Key: "A", Text: "Dados Funcionais > Servidores > Cadastro"},
				{Key: "B", Text: "Registro Funcional > Regime Jurídico"},
				{Key: "C", Text: "Folha de Pagamento > Prepara Cálculo > Congelamento de Dados"},
				{Key: "D", Text: "Estágio Probatório > Avaliação > Cadastro"},
			},
			Correct: "B",
		},
		{
			ID:    8,
			Title: "Qual módulo eu busco as informações sobre condição de processamento?",
			Options: []domain.Option{
				{Key: "A", Text: "Dados Funcionais > Servidores > Cadastro"},
				{Key: "B", Text: "Dados Funcionais > Pensão Alimentícia"},
				{Key: "C", Text: "Frequência > Licença Prêmio/Capacitação > Concessão"},
				{Key: "D", Text: "Administração > Condição de Processamento"},
			},
			Correct: "D",
		},
		{
			ID:    9,
			Title: "Qual módulo eu seleciono uma determinada folha?",
			Options: []domain.Option{
				{Key: "A", Text: "Folha de Pagamento > Controle da Folha > Abre/Fecha Folha"},
				{Key: "B", Text: "Folha de Pagamento > Seleção de Folha"},
				{Key: "C", Text: "Folha de Pagamento > Fechamento > Folha Calculada"},
				{Key: "D", Text: "Folha de Pagamento > Prepara Cálculo > Benefícios"},
			},
			Correct: "B",
		},
		{
			ID:    10,
			Title: "Qual caminho/módulo eu posso acessar a folha de um determinado servidor?",
			Options: []domain.Option{
				{Key: "A", Text: "Folha de Pagamento > Seleção de Folha"},
				{Key: "B", Text: "Folha de Pagamento > Lançamentos > Transfere Rubrica"},
				{Key: "C", Text: "Folha de Pagamento > Lançamentos > Rubrica Individual"},
				{Key: "D", Text: "Folha de Pagamento > Lançamentos > Devolução/Reposição"},
			},
			Correct: "C",
		},
	}
}

func videoQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:    1,
			Title: "Pergunta baseada no vídeo 1",
			Options: []domain.Option{
				{Key: "A", Text: "Opção A"},
				{Key: "B", Text: "Opção B"},
				{Key: "C", Text: "Opção C"},
				{Key: "D", Text: "Opção D"},
			},
			Correct: "A",
		},
		{
			ID:    2,
			Title: "Pergunta baseada no vídeo 2",
			Options: []domain.Option{
				{Key: "A", Text: "Opção A"},
				{Key: "B", Text: "Opção B"},
				{Key: "C", Text: "Opção C"},
				{Key: "D", Text: "Opção D"},
			},
			Correct: "B",
		},
	}
}
