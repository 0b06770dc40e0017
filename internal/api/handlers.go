package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"meetingbot/internal/auth"
	"meetingbot/internal/library"
	"meetingbot/internal/users"

	"github.com/sirupsen/logrus"
)

type Handler struct {
	libraryService *library.Service
	userService    *users.Service
	jwtSigningKey  string
}

func NewHandler(libSvc *library.Service, userSvc *users.Service, jwtKey string) *Handler {
	return &Handler{
		libraryService: libSvc,
		userService:    userSvc,
		jwtSigningKey:  jwtKey,
	}
}

type CreateBookRequest struct {
	Title         string `json:"title"`
	AuthorName    string `json:"author_name"`
	PublishedYear int    `json:"published_year"`
	Genre         string `json:"genre"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	UserID   int64  `json:"user_id"`
	UserRole string `json:"user_role"`
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Login    string  `json:"login"`
	Password string  `json:"password"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// BooksHandler serves POST (create), GET (list) and DELETE (single by ?id=,
// or all) on /books.
func (h *Handler) BooksHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createBook(w, r)
	case http.MethodGet:
		h.listBooks(w, r)
	case http.MethodDelete:
		h.deleteBooks(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) createBook(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title == "" || req.AuthorName == "" {
		http.Error(w, "Title and author_name are required", http.StatusBadRequest)
		return
	}

	book, err := h.libraryService.CreateBook(r.Context(), req.Title, req.AuthorName, req.PublishedYear, req.Genre)
	if err != nil {
		if errors.Is(err, library.ErrBookAlreadyExists) {
			http.Error(w, "Book already exists.", http.StatusBadRequest)
		} else {
			logrus.Errorf("Failed to create book %q: %v", req.Title, err)
			http.Error(w, "Failed to create book", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, book)
}

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.libraryService.ListBooks(r.Context())
	if err != nil {
		logrus.Errorf("Failed to list books: %v", err)
		http.Error(w, "Failed to list books", http.StatusInternalServerError)
		return
	}

	if books == nil {
		books = []library.BookWithAuthor{}
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *Handler) deleteBooks(w http.ResponseWriter, r *http.Request) {
	idParam := r.URL.Query().Get("id")

	if idParam != "" {
		id, err := strconv.Atoi(idParam)
		if err != nil {
			http.Error(w, "Invalid book id", http.StatusBadRequest)
			return
		}

		if err := h.libraryService.DeleteBook(r.Context(), id); err != nil {
			if errors.Is(err, library.ErrBookNotFound) {
				http.Error(w, "Book not found", http.StatusNotFound)
			} else {
				logrus.Errorf("Failed to delete book %d: %v", id, err)
				http.Error(w, "Failed to delete book", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Deleted book %d", id)})
		return
	}

	count, err := h.libraryService.DeleteAllBooks(r.Context())
	if err != nil {
		logrus.Errorf("Failed to delete all books: %v", err)
		http.Error(w, "Failed to delete books", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Deleted all records (%d books).", count)})
}

func (h *Handler) ListAuthorsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	authors, err := h.libraryService.ListAuthors(r.Context())
	if err != nil {
		logrus.Errorf("Failed to list authors: %v", err)
		http.Error(w, "Failed to list authors", http.StatusInternalServerError)
		return
	}

	if authors == nil {
		authors = []library.Author{}
	}
	writeJSON(w, http.StatusOK, authors)
}

func (h *Handler) UserListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := h.userService.ListUsers(r.Context())
	if err != nil {
		logrus.Errorf("Failed to list users: %v", err)
		http.Error(w, "Failed to list users", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []users.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.UserRole == "" {
		http.Error(w, "Username and user_role are required", http.StatusBadRequest)
		return
	}

	record, err := h.userService.CreateUser(r.Context(), req.Username, req.UserID, req.UserRole)
	if err != nil {
		if errors.Is(err, users.ErrUserAlreadyExists) {
			http.Error(w, "User already exists.", http.StatusBadRequest)
		} else {
			logrus.Errorf("Failed to create user %q: %v", req.Username, err)
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Data    *users.Record `json:"data"`
		Message string        `json:"message"`
	}{Data: record, Message: "User created successfully"})
}

func (h *Handler) DeleteAllUsersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	count, err := h.userService.DeleteAllUsers(r.Context())
	if err != nil {
		logrus.Errorf("Failed to delete all users: %v", err)
		http.Error(w, "Failed to delete users", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Deleted all users (%d records).", count)})
}

func (h *Handler) RegisterWebUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Login == "" || req.Password == "" {
		http.Error(w, "Login and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.userService.RegisterWebUser(r.Context(), req.Login, req.Password, req.Email, req.Phone)
	if err != nil {
		if errors.Is(err, users.ErrWebUserAlreadyExists) {
			http.Error(w, "User with this login already exists", http.StatusConflict)
		} else {
			logrus.Errorf("Failed to register web user %q: %v", req.Login, err)
			http.Error(w, "Failed to register user", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) AuthLoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Login == "" || req.Password == "" {
		http.Error(w, "Login and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.userService.AuthenticateWebUser(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			http.Error(w, "Invalid login or password", http.StatusUnauthorized)
		} else {
			logrus.Errorf("Failed to authenticate %q: %v", req.Login, err)
			http.Error(w, "Authentication failed", http.StatusInternalServerError)
		}
		return
	}

	token, err := auth.GenerateJWTToken(user.ID, h.jwtSigningKey, 24*time.Hour)
	if err != nil {
		logrus.Errorf("Failed to generate JWT token: %v", err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}
