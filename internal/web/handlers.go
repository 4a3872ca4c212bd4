package web

import (
	"fmt"
	"net/http"

	"github.com/conorfennell/brainstack/internal/domain"
	"github.com/conorfennell/brainstack/internal/study"
)

type createDeckRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type addCardRequest struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type importRequest struct {
	Source string `json:"source"`
}

type studyRequest struct {
	Results []study.Result `json:"results"`
}

type createTestRequest struct {
	DeckID       string `json:"deck_id"`
	NumQuestions int    `json:"num_questions"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

// Practice tests default to ten questions, as many as the deck allows.
const defaultNumQuestions = 10

func (s *Server) handleListDecks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decks, err := s.svc.Decks.ListDecks(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, decks)
	}
}

func (s *Server) handleCreateDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createDeckRequest
		if err := decode(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		d, err := s.svc.Decks.CreateDeck(r.Context(), req.Name, req.Description)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, d)
	}
}

func (s *Server) handleGetDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := s.svc.Decks.GetDeck(r.Context(), r.PathValue("deckID"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, d)
	}
}

func (s *Server) handleDeleteDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.svc.Decks.DeleteDeck(r.Context(), r.PathValue("deckID")); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleAddCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addCardRequest
		if err := decode(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		card, err := s.svc.Decks.AddCard(r.Context(), r.PathValue("deckID"), req.Front, req.Back)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, card)
	}
}

func (s *Server) handleRemoveCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.svc.Decks.RemoveCard(r.Context(), r.PathValue("deckID"), r.PathValue("cardID")); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleDeleteCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.svc.Decks.DeleteCard(r.Context(), r.PathValue("cardID")); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleImport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req importRequest
		if err := decode(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		res, err := s.svc.Importer.Import(r.Context(), r.PathValue("deckID"), req.Source)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleStudyCards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards, err := s.svc.Study.Cards(r.Context(), r.PathValue("deckID"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, cards)
	}
}

func (s *Server) handleRecordStudy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req studyRequest
		if err := decode(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		// An explicit empty list is a session in which nothing was reviewed.
		if req.Results == nil {
			s.writeError(w, r, fmt.Errorf("%w: results is required", domain.ErrInvalidInput))
			return
		}
		summary, err := s.svc.Study.RunSession(r.Context(), r.PathValue("deckID"), req.Results)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, summary)
	}
}

func (s *Server) handleProgress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := s.svc.Progress.Report(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, report)
	}
}

func (s *Server) handleListTests() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tests, err := s.svc.Practice.List(r.Context(), r.URL.Query().Get("deck_id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, tests)
	}
}

func (s *Server) handleCreateTest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := createTestRequest{NumQuestions: defaultNumQuestions}
		if err := decode(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		test, err := s.svc.Practice.Create(r.Context(), req.DeckID, req.NumQuestions)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, test)
	}
}

type testResponse struct {
	Test     *domain.PracticeTest `json:"test"`
	Status   domain.TestStatus    `json:"status"`
	Progress domain.TestProgress  `json:"progress"`
}

func newTestResponse(t *domain.PracticeTest) testResponse {
	return testResponse{Test: t, Status: t.Status(), Progress: t.Progress()}
}

func (s *Server) handleGetTest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		test, err := s.svc.Practice.Get(r.Context(), r.PathValue("testID"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, newTestResponse(test))
	}
}

func (s *Server) handleDeleteTest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.svc.Practice.Delete(r.Context(), r.PathValue("testID")); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleSubmitAnswer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answerRequest
		if err := decode(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		q, err := s.svc.Practice.SubmitAnswer(r.Context(), r.PathValue("testID"), r.PathValue("questionID"), req.Answer)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, q)
	}
}

func (s *Server) handleCompleteTest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		test, err := s.svc.Practice.Complete(r.Context(), r.PathValue("testID"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, newTestResponse(test))
	}
}
