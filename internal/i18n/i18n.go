// Package i18n translates user-facing messages into the visitor's language.
// Messages are keyed by their English text; Russian is the default.
package i18n

import (
	"context"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The English text doubles as the key.
const (
	MsgLoginRequired          = "Please log in to continue."
	MsgForbidden              = "You do not have permission to perform this action."
	MsgEditBookForbidden      = "You do not have permission to edit this book."
	MsgDeleteBookForbidden    = "You do not have permission to delete this book."
	MsgEditCommentForbidden   = "You do not have permission to edit this comment."
	MsgDeleteCommentForbidden = "You do not have permission to delete this comment."
	MsgSuperuserRequired      = "Only moderators can change verification status."
	MsgBookNotFound           = "Book not found."
	MsgCommentNotFound        = "Comment not found."
	MsgGenreNotFound          = "Genre not found."
	MsgPageNotFound           = "Page not found."
	MsgInvalidCredentials     = "Please enter a correct username and password."
	MsgTooManyAttempts        = "Too many attempts. Try again in a minute."
	MsgInternal               = "Something went wrong. Please try again later."
	MsgCommentPending         = "Thank you! Your comment will appear after moderation."
	MsgCommentRejected        = "Your comment was not saved. Please correct the errors below."
	MsgBookPending            = "The book was saved and will appear in the catalog after moderation."
	MsgUsernameTaken          = "A user with that username already exists."
	MsgPhoneTaken             = "A user with that phone number already exists."
	MsgUnknownGenre           = "Select a valid genre."
	MsgImageTooLarge          = "The image must be 5 MiB or smaller."
	MsgImageInvalid           = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

var russian = map[string]string{
	MsgLoginRequired:          "Войдите, чтобы продолжить.",
	MsgForbidden:              "У вас нет прав на это действие.",
	MsgEditBookForbidden:      "У вас нет прав на редактирование",
	MsgDeleteBookForbidden:    "У вас нет прав на удаление",
	MsgEditCommentForbidden:   "У вас нет прав на редактирование комментария",
	MsgDeleteCommentForbidden: "У вас нет прав на удаление комментария",
	MsgSuperuserRequired:      "Менять статус проверки могут только модераторы.",
	MsgBookNotFound:           "Книга не найдена.",
	MsgCommentNotFound:        "Комментарий не найден.",
	MsgGenreNotFound:          "Жанр не найден.",
	MsgPageNotFound:           "Страница не найдена.",
	MsgInvalidCredentials:     "Введите правильные имя пользователя и пароль.",
	MsgTooManyAttempts:        "Слишком много попыток. Повторите через минуту.",
	MsgInternal:               "Что-то пошло не так. Попробуйте позже.",
	MsgCommentPending:         "Спасибо! Комментарий появится после проверки модератором.",
	MsgCommentRejected:        "Комментарий не сохранён. Исправьте ошибки ниже.",
	MsgBookPending:            "Книга сохранена и появится в каталоге после проверки модератором.",
	MsgUsernameTaken:          "Пользователь с таким именем уже существует.",
	MsgPhoneTaken:             "Пользователь с таким номером телефона уже существует.",
	MsgUnknownGenre:           "Выберите корректный жанр.",
	MsgImageTooLarge:          "Размер изображения не должен превышать 5 МиБ.",
	MsgImageInvalid:           "Загрузите корректное изображение.",
}

// pageText holds the Russian text of page labels and validation messages.
// Their keys are used inline by templates and validators.
var pageText = map[string]string{
	// Navigation and titles
	"Catalog":      "Каталог",
	"Search":       "Поиск",
	"Add book":     "Добавить книгу",
	"Edit book":    "Редактирование книги",
	"Delete book":  "Удаление книги",
	"Edit comment": "Редактирование комментария",
	"Profile":      "Профиль",
	"Moderation":   "Модерация",
	"Registration": "Регистрация",
	"Log in":       "Вход",
	"Log out":      "Выйти",

	// Books
	"Title":                        "Название",
	"Author":                       "Автор",
	"Genres":                       "Жанры",
	"Description":                  "Описание",
	"Publisher":                    "Издательство",
	"Year of publication":          "Год издания",
	"Quantity":                     "Количество",
	"Out of stock":                 "Нет в наличии",
	"Price":                        "Цена",
	"Image":                        "Изображение",
	"Remove image":                 "Удалить изображение",
	"Awaiting moderation":          "Ожидает проверки",
	"No books here yet.":           "Здесь пока нет книг.",
	"All genres":                   "Все жанры",
	"Find":                         "Найти",
	"Found: %d":                    "Найдено: %d",
	"My books":                     "Мои книги",
	"Back to the catalog":          "Вернуться в каталог",
	"Books awaiting moderation":    "Книги на проверке",
	"Comments awaiting moderation": "Комментарии на проверке",
	"Nothing to review.":           "Проверять нечего.",
	"Verify":                       "Одобрить",
	"Unverify":                     "Снять одобрение",

	"Delete \"%s\"? Its comments will be deleted too.": "Удалить «%s»? Комментарии к книге тоже будут удалены.",
	"You have not listed any books yet.":               "Вы ещё не добавили ни одной книги.",

	// Comments
	"Comments":         "Комментарии",
	"Comment":          "Комментарий",
	"Leave a comment":  "Оставить комментарий",
	"No comments yet.": "Комментариев пока нет.",
	"Anonymous":        "Аноним",
	"Send":             "Отправить",

	// Accounts
	"Username":              "Имя пользователя",
	"Password":              "Пароль",
	"Password confirmation": "Подтверждение пароля",
	"Email":                 "Электронная почта",
	"Last name":             "Фамилия",
	"First name":            "Имя",
	"Father's name":         "Отчество",
	"Phone number":          "Номер телефона",
	"Avatar":                "Аватар",
	"Sign up":               "Зарегистрироваться",

	// Buttons
	"Edit":   "Редактировать",
	"Delete": "Удалить",
	"Save":   "Сохранить",
	"Cancel": "Отмена",

	// Validation
	"This field is required.":      "Обязательное поле.",
	"Enter a valid email address.": "Введите правильный адрес электронной почты.",

	"Enter a valid phone number in international format, e.g. +79991234567.": "Введите номер телефона в международном формате, например +79991234567.",

	"The two password fields didn't match.":       "Введённые пароли не совпадают.",
	"Ensure this value has exactly 4 characters.": "Значение должно состоять ровно из 4 символов.",

	"Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.": "Введите правильное имя пользователя. Оно может содержать только буквы, цифры и символы @/./+/-/_.",

	"Enter a whole number.":                  "Введите целое число.",
	"Enter a number.":                        "Введите число.",
	"Enter a valid value.":                   "Введите правильное значение.",
	"A genre with this name already exists.": "Жанр с таким названием уже существует.",
	"The request is too large.":              "Слишком большой запрос.",
	"The form could not be read.":            "Не удалось прочитать форму.",
}

// Supported lists the languages with translations. The first is the fallback.
var Supported = []language.Tag{language.Russian, language.English}

var matcher = language.NewMatcher(Supported)

func init() {
	for key, text := range pageText {
		russian[key] = text
	}
	for key, text := range russian {
		if err := message.SetString(language.Russian, key, text); err != nil {
			panic(err)
		}
		if err := message.SetString(language.English, key, key); err != nil {
			panic(err)
		}
	}
}

// Match picks the best supported language for an Accept-Language header.
func Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Supported[0]
	}
	_, index, _ := matcher.Match(tags...)
	return Supported[index]
}

// T translates key into lang. Unknown keys come back as given.
func T(lang language.Tag, key string, args ...any) string {
	return message.NewPrinter(lang).Sprintf(key, args...)
}

type ctxKey struct{}

// WithLanguage stores the request language in ctx.
func WithLanguage(ctx context.Context, lang language.Tag) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// FromContext returns the request language, or the fallback.
func FromContext(ctx context.Context) language.Tag {
	if lang, ok := ctx.Value(ctxKey{}).(language.Tag); ok {
		return lang
	}
	return Supported[0]
}
