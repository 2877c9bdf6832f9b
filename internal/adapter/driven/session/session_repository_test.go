package session

import (
	"path/filepath"
	"testing"

	"github.com/diillson/finly-dashboard-go/internal/domain/entity"
	"github.com/diillson/finly-dashboard-go/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SessionRepositoryTestSuite struct {
	suite.Suite
	path string
	repo repository.SessionRepository
}

func (s *SessionRepositoryTestSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "state.db")
	repo, err := NewSessionRepository(s.path)
	require.NoError(s.T(), err)
	s.repo = repo
}

func (s *SessionRepositoryTestSuite) TearDownTest() {
	if s.repo != nil {
		s.repo.Close()
	}
}

func (s *SessionRepositoryTestSuite) TestLoadEmpty() {
	session, err := s.repo.Load()
	require.NoError(s.T(), err)
	assert.False(s.T(), session.Authenticated())
}

func (s *SessionRepositoryTestSuite) TestSaveAndLoad() {
	require.NoError(s.T(), s.repo.Save(entity.Session{Token: "abc", UserID: "7"}))

	session, err := s.repo.Load()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), entity.Session{Token: "abc", UserID: "7"}, session)

	// overwrite drops the stale user id
	require.NoError(s.T(), s.repo.Save(entity.Session{Token: "def"}))
	session, err = s.repo.Load()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), entity.Session{Token: "def"}, session)
}

func (s *SessionRepositoryTestSuite) TestPersistsAcrossReopen() {
	require.NoError(s.T(), s.repo.Save(entity.Session{Token: "abc", UserID: "7"}))
	require.NoError(s.T(), s.repo.Close())

	reopened, err := NewSessionRepository(s.path)
	require.NoError(s.T(), err)
	s.repo = reopened

	session, err := s.repo.Load()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "abc", session.Token)
}

func (s *SessionRepositoryTestSuite) TestClear() {
	require.NoError(s.T(), s.repo.Save(entity.Session{Token: "abc", UserID: "7"}))
	require.NoError(s.T(), s.repo.Clear())

	session, err := s.repo.Load()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), entity.Session{}, session)
}

func TestSessionRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(SessionRepositoryTestSuite))
}
