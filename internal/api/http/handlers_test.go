package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/akovalyov/url-shortener/internal/database"
	"github.com/akovalyov/url-shortener/internal/service"
	"github.com/akovalyov/url-shortener/pkg/response"
)

type MockURLService struct {
	mock.Mock
}

func (s *MockURLService) ShortenURL(ctx context.Context, originalURL string) (string, error) {
	args := s.Called(ctx, originalURL)
	return args.String(0), args.Error(1)
}

func (s *MockURLService) ResolveShortCode(ctx context.Context, shortCode string) (string, error) {
	args := s.Called(ctx, shortCode)
	return args.String(0), args.Error(1)
}

func (s *MockURLService) GetClickCount(ctx context.Context, shortCode string) (int64, error) {
	args := s.Called(ctx, shortCode)
	return args.Get(0).(int64), args.Error(1)
}

type HandlersTestSuite struct {
	suite.Suite
	errUnknown error
	logger     *httplog.Logger
	urlSvcMock *MockURLService
	server     *httptest.Server
	e          *httpexpect.Expect
}

func (suite *HandlersTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
	suite.logger = httplog.NewLogger("", httplog.Options{Writer: io.Discard})
}

func (suite *HandlersTestSuite) SetupSubTest() {
	suite.urlSvcMock = new(MockURLService)
	router := NewRouter(suite.logger, suite.urlSvcMock)
	suite.server = httptest.NewServer(router)

	// Redirects are asserted on, not followed.
	suite.e = httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  suite.server.URL,
		Reporter: httpexpect.NewAssertReporter(suite.T()),
		Client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	})
}

func (suite *HandlersTestSuite) TearDownSubTest() {
	suite.urlSvcMock.AssertExpectations(suite.T())
	suite.server.Close()
}

func (suite *HandlersTestSuite) TestPing() {
	const path = "/ping"

	suite.Run("success", func() {
		suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			Text().IsEqual("pong\n")
	})
}

func (suite *HandlersTestSuite) TestShortenURL() {
	const path = "/api/shorten"

	suite.Run("empty request body", func() {
		suite.e.POST(path).
			Expect().
			Status(http.StatusBadRequest).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.EmptyRequestBodyResponse.Message)
	})

	suite.Run("invalid request body", func() {
		suite.e.POST(path).
			WithJSON("invalid body").
			Expect().
			Status(http.StatusBadRequest).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.BadRequestResponse.Message)
	})

	suite.Run("validation error", func() {
		resp := suite.e.POST(path).
			WithJSON(map[string]string{
				"originalUrl": "https://invalid url",
			}).
			Expect().
			Status(http.StatusBadRequest).
			HasContentType("application/json").
			JSON().Object()

		resp.HasValue("status", response.StatusError)
		resp.Value("details").Array().NotEmpty().
			Value(0).Object().
			HasValue("field", "originalUrl")
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.
			On("ShortenURL", mock.Anything, "https://example.com").
			Once().
			Return("", suite.errUnknown)

		suite.e.POST(path).
			WithJSON(map[string]string{
				"originalUrl": "https://example.com",
			}).
			Expect().
			Status(http.StatusInternalServerError).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ServerErrorResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.
			On("ShortenURL", mock.Anything, "https://example.com").
			Once().
			Return("ABC1234", nil)

		suite.e.POST(path).
			WithJSON(map[string]string{
				"originalUrl": "https://example.com",
			}).
			Expect().
			Status(http.StatusCreated).
			HasContentType("application/json").
			JSON().Object().
			HasValue("shortUrl", "ABC1234")
	})

	suite.Run("normalizes scheme-less url", func() {
		suite.urlSvcMock.
			On("ShortenURL", mock.Anything, "https://example.com").
			Once().
			Return("ABC1234", nil)

		suite.e.POST(path).
			WithJSON(map[string]string{
				"originalUrl": "example.com",
			}).
			Expect().
			Status(http.StatusCreated).
			HasContentType("application/json").
			JSON().Object().
			HasValue("shortUrl", "ABC1234")
	})
}

func (suite *HandlersTestSuite) TestRedirect() {
	const path = "/ABC1234"

	suite.Run("short code not found", func() {
		suite.urlSvcMock.
			On("ResolveShortCode", mock.Anything, "ABC1234").
			Once().
			Return("", database.ErrURLNotFound)

		suite.e.GET(path).
			Expect().
			Status(http.StatusNotFound).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ResourceNotFoundResponse.Message)
	})

	suite.Run("url expired", func() {
		suite.urlSvcMock.
			On("ResolveShortCode", mock.Anything, "ABC1234").
			Once().
			Return("", service.ErrURLExpired)

		suite.e.GET(path).
			Expect().
			Status(http.StatusGone).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.URLExpiredResponse.Message)
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.
			On("ResolveShortCode", mock.Anything, "ABC1234").
			Once().
			Return("", suite.errUnknown)

		suite.e.GET(path).
			Expect().
			Status(http.StatusInternalServerError).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ServerErrorResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.
			On("ResolveShortCode", mock.Anything, "ABC1234").
			Once().
			Return("https://example.com", nil)

		suite.e.GET(path).
			Expect().
			Status(http.StatusFound).
			Header("Location").IsEqual("https://example.com")
	})
}

func (suite *HandlersTestSuite) TestGetStats() {
	const path = "/ABC1234/stats"

	suite.Run("short code not found", func() {
		suite.urlSvcMock.
			On("GetClickCount", mock.Anything, "ABC1234").
			Once().
			Return(int64(0), database.ErrURLNotFound)

		suite.e.GET(path).
			Expect().
			Status(http.StatusNotFound).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ResourceNotFoundResponse.Message)
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.
			On("GetClickCount", mock.Anything, "ABC1234").
			Once().
			Return(int64(0), suite.errUnknown)

		suite.e.GET(path).
			Expect().
			Status(http.StatusInternalServerError).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ServerErrorResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.
			On("GetClickCount", mock.Anything, "ABC1234").
			Once().
			Return(int64(42), nil)

		suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			HasContentType("application/json").
			JSON().Object().
			HasValue("shortUrl", "ABC1234").
			HasValue("clickCount", 42)
	})
}

func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
